package engine

import (
	"context"

	"github.com/soundweave/choreo/audio"
)

// Source is the audio capture collaborator. Start acquires the device
// asynchronously; Read returns the latest buffers without blocking and
// reports false until data is available; Stop releases the device so a
// different source can take over.
type Source interface {
	Start(ctx context.Context) error
	Read() (frequencies, samples []float64, stereo *audio.StereoSamples, ok bool)
	Stop() error
}
