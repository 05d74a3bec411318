// Package spatial derives per-entity depth-layer modulation from camera
// distance, role, and the current audio frame.
package spatial

import (
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/ensemble"
	"github.com/soundweave/choreo/geom"
)

// Layer is the camera-distance bucket
type Layer int

const (
	Foreground Layer = iota
	Midground
	Background
)

func (l Layer) String() string {
	switch l {
	case Foreground:
		return "foreground"
	case Midground:
		return "midground"
	default:
		return "background"
	}
}

// Modulation is the derived per-entity output. It has no lifecycle of its
// own beyond the composer's cache.
type Modulation struct {
	Layer Layer   `json:"layer"`
	Depth float64 `json:"depth"` // normalized camera distance, 0-1

	ForceScale    float64 `json:"force_scale"`
	VelocityScale float64 `json:"velocity_scale"`

	BassResponse   float64 `json:"bass_response"`
	MidResponse    float64 `json:"mid_response"`
	TrebleResponse float64 `json:"treble_response"`

	Brightness float64 `json:"brightness"`
	Saturation float64 `json:"saturation"`
	Scale      float64 `json:"scale"`
	Opacity    float64 `json:"opacity"`
}

// ComposerConfig tunes layer boundaries and caching
type ComposerConfig struct {
	// Depth boundaries between layers on the normalized 0-1 axis
	ForegroundBoundary float64 `json:"foreground_boundary"`
	MidgroundBoundary  float64 `json:"midground_boundary"`

	// Camera distance mapping to depth 1.0
	MaxDepth float64 `json:"max_depth"`

	// Cache entry lifetime, seconds
	CacheTTL float64 `json:"cache_ttl"`
}

// DefaultComposerConfig returns the tuned defaults
func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		ForegroundBoundary: 0.4,
		MidgroundBoundary:  0.8,
		MaxDepth:           50.0,
		CacheTTL:           0.1,
	}
}

// layerBase is the per-layer multiplier table
var layerBase = [3]Modulation{
	Foreground: {
		ForceScale: 1.2, VelocityScale: 1.1,
		BassResponse: 1.0, MidResponse: 1.0, TrebleResponse: 1.2,
		Brightness: 1.1, Saturation: 1.1, Scale: 1.1, Opacity: 1.0,
	},
	Midground: {
		ForceScale: 1.0, VelocityScale: 1.0,
		BassResponse: 1.0, MidResponse: 1.0, TrebleResponse: 1.0,
		Brightness: 1.0, Saturation: 1.0, Scale: 1.0, Opacity: 0.9,
	},
	Background: {
		ForceScale: 0.6, VelocityScale: 0.7,
		BassResponse: 1.1, MidResponse: 0.8, TrebleResponse: 0.6,
		Brightness: 0.7, Saturation: 0.6, Scale: 0.85, Opacity: 0.6,
	},
}

type cacheEntry struct {
	mod   Modulation
	at    time.Time
	valid bool
}

// Composer computes and caches per-entity spatial modulation. Entries
// live ~CacheTTL seconds to bound per-frame recomputation. Single-owner,
// frame-driven.
type Composer struct {
	config ComposerConfig
	now    func() time.Time
	cache  []cacheEntry
}

// NewComposer creates a composer with the given configuration
func NewComposer(config ComposerConfig) *Composer {
	return &Composer{
		config: config,
		now:    time.Now,
	}
}

// Invalidate drops every cached entry, including those for entity
// indices that no longer exist. Call when entity position data is
// replaced wholesale.
func (c *Composer) Invalidate() {
	c.cache = c.cache[:0]
}

// Modulation returns the spatial modulation for one entity, serving a
// cached value when fresh
func (c *Composer) Modulation(idx int, pos geom.Vec3, role ensemble.Role, camera geom.Pose, frame *audio.Frame) Modulation {
	if idx < 0 {
		return layerBase[Midground]
	}
	if idx >= len(c.cache) {
		c.cache = append(c.cache, make([]cacheEntry, idx+1-len(c.cache))...)
	}

	nowTime := c.now()
	entry := &c.cache[idx]
	if entry.valid && nowTime.Sub(entry.at).Seconds() < c.config.CacheTTL {
		return entry.mod
	}

	mod := c.compute(pos, role, camera, frame)
	*entry = cacheEntry{mod: mod, at: nowTime, valid: true}
	return mod
}

func (c *Composer) compute(pos geom.Vec3, role ensemble.Role, camera geom.Pose, frame *audio.Frame) Modulation {
	depth := dsp.Clamp01(pos.Distance(camera.Position) / c.config.MaxDepth)

	layer := Background
	switch {
	case depth < c.config.ForegroundBoundary:
		layer = Foreground
	case depth < c.config.MidgroundBoundary:
		layer = Midground
	}

	mod := layerBase[layer]
	mod.Layer = layer
	mod.Depth = depth

	// Distant entities fade further within their layer
	mod.Opacity *= 1.0 - 0.3*depth

	// The modulation bus leans the image: shimmer brightens what is
	// close, density thickens what is far
	mod.Brightness *= 1.0 + 0.2*frame.Bus.Shimmer*(1.0-depth)
	mod.ForceScale *= 1.0 + 0.15*frame.Bus.Density*depth

	switch role {
	case ensemble.RoleLead:
		mod.ForceScale *= 1.25
		mod.Brightness *= 1.2
		mod.Scale *= 1.1
	case ensemble.RoleAmbient:
		mod.ForceScale *= 0.8
		mod.Brightness *= 0.9
	}

	return mod
}
