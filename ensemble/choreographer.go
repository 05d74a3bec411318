// Package ensemble assigns per-entity roles and drives the global
// formation state from the audio feature stream.
package ensemble

import (
	"math/rand"
	"sort"
	"time"

	"github.com/soundweave/choreo/audio"
	"github.com/soundweave/choreo/dsp"
	"github.com/soundweave/choreo/geom"
	"github.com/soundweave/choreo/logging"
)

// Role is the per-entity behavioral importance tier
type Role int

const (
	RoleAmbient Role = iota
	RoleSupport
	RoleLead
)

func (r Role) String() string {
	switch r {
	case RoleLead:
		return "lead"
	case RoleSupport:
		return "support"
	default:
		return "ambient"
	}
}

// RoleAssignment is the mutable per-entity record, stored densely by
// entity index
type RoleAssignment struct {
	Role       Role      `json:"role"`
	Priority   float64   `json:"priority"`
	Energy     float64   `json:"energy"`
	LastChange time.Time `json:"last_change"`
	assigned   bool
}

// Config tunes role scoring, partitioning, and formation transitions
type Config struct {
	// Priority weights; documented defaults 0.35/0.25/0.15/0.15/0.10
	ProximityWeight float64 `json:"proximity_weight"`
	VelocityWeight  float64 `json:"velocity_weight"`
	HeightWeight    float64 `json:"height_weight"`
	EnergyWeight    float64 `json:"energy_weight"`
	JitterWeight    float64 `json:"jitter_weight"`

	// Rank partition fractions (remainder is ambient)
	LeadFraction    float64 `json:"lead_fraction"`
	SupportFraction float64 `json:"support_fraction"`

	// Role changes are suppressed inside this window, seconds
	RoleHysteresis float64 `json:"role_hysteresis"`

	// Formation transition span, seconds
	TransitionDuration float64 `json:"transition_duration"`

	// Normalization ranges for scoring
	MaxCameraDistance float64 `json:"max_camera_distance"`
	MaxSpeed          float64 `json:"max_speed"`
	HeightRange       float64 `json:"height_range"`

	// Section classifier dwell, seconds
	SectionDwell float64 `json:"section_dwell"`

	Seed int64 `json:"seed"`
}

// DefaultConfig returns the tuned defaults
func DefaultConfig() Config {
	return Config{
		ProximityWeight:    0.35,
		VelocityWeight:     0.25,
		HeightWeight:       0.15,
		EnergyWeight:       0.15,
		JitterWeight:       0.10,
		LeadFraction:       0.10,
		SupportFraction:    0.30,
		RoleHysteresis:     2.0,
		TransitionDuration: 2.0,
		MaxCameraDistance:  50.0,
		MaxSpeed:           10.0,
		HeightRange:        10.0,
		SectionDwell:       4.0,
		Seed:               1,
	}
}

// Choreographer owns role assignments and the formation state machine.
// Single-owner, frame-driven; not safe for concurrent use.
type Choreographer struct {
	config Config
	logger logging.Logger

	now func() time.Time
	rng *rand.Rand

	assignments []RoleAssignment
	rankScratch []int

	formation       FormationState
	target          *FormationState
	transitionStart time.Time

	classifier SectionClassifier
}

// NewChoreographer creates a choreographer with the given configuration
func NewChoreographer(config Config) *Choreographer {
	return &Choreographer{
		config: config,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "ensemble"}),
		now:    time.Now,
		rng:    rand.New(rand.NewSource(config.Seed)),
		formation: FormationState{
			Type:      FormationScatter,
			Radius:    10.0,
			Direction: geom.Vec3{Y: 1.0},
			Cohesion:  0.3,
		},
		classifier: NewSectionClassifier(),
	}
}

// Assignments returns the dense per-entity role records. The slice is
// reused between frames.
func (c *Choreographer) Assignments() []RoleAssignment {
	return c.assignments
}

// RoleOf returns the current role for an entity index, defaulting to
// ambient for unknown indices
func (c *Choreographer) RoleOf(idx int) Role {
	if idx < 0 || idx >= len(c.assignments) {
		return RoleAmbient
	}
	return c.assignments[idx].Role
}

// UpdateRoles scores every entity, ranks them, and applies the 10/30/60
// partition under the role-change hysteresis window
func (c *Choreographer) UpdateRoles(positions, velocities []geom.Vec3, camera geom.Pose, frame *audio.Frame) {
	n := len(positions)
	if n == 0 {
		return
	}
	if len(c.assignments) < n {
		c.assignments = append(c.assignments, make([]RoleAssignment, n-len(c.assignments))...)
	} else if len(c.assignments) > n {
		c.assignments = c.assignments[:n]
	}

	nowTime := c.now()

	for i := 0; i < n; i++ {
		proximity := 1.0 - dsp.Clamp01(positions[i].Distance(camera.Position)/c.config.MaxCameraDistance)
		speed := 0.0
		if i < len(velocities) {
			speed = dsp.Clamp01(velocities[i].Length() / c.config.MaxSpeed)
		}
		height := dsp.Clamp01((positions[i].Y + c.config.HeightRange) / (2.0 * c.config.HeightRange))

		priority := c.config.ProximityWeight*proximity +
			c.config.VelocityWeight*speed +
			c.config.HeightWeight*height +
			c.config.EnergyWeight*frame.Overall +
			c.config.JitterWeight*c.rng.Float64()

		c.assignments[i].Priority = priority
		c.assignments[i].Energy = frame.Overall
	}

	c.applyPartition(n, nowTime)
}

// applyPartition ranks entities by priority and assigns the top 10% lead,
// next 30% support, remainder ambient, honoring hysteresis
func (c *Choreographer) applyPartition(n int, nowTime time.Time) {
	if cap(c.rankScratch) < n {
		c.rankScratch = make([]int, n)
	}
	rank := c.rankScratch[:n]
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool {
		return c.assignments[rank[a]].Priority > c.assignments[rank[b]].Priority
	})

	leadCount := int(c.config.LeadFraction * float64(n))
	supportCount := int(c.config.SupportFraction * float64(n))

	for pos, idx := range rank {
		desired := RoleAmbient
		if pos < leadCount {
			desired = RoleLead
		} else if pos < leadCount+supportCount {
			desired = RoleSupport
		}

		a := &c.assignments[idx]
		if !a.assigned {
			a.Role = desired
			a.LastChange = nowTime
			a.assigned = true
			continue
		}
		if a.Role == desired {
			continue
		}
		if nowTime.Sub(a.LastChange).Seconds() >= c.config.RoleHysteresis {
			a.Role = desired
			a.LastChange = nowTime
		}
	}
}

// Update advances the formation state machine for one frame: classify the
// musical section, start a transition when the mapped formation differs,
// and drive cohesion/rotation from the frame
func (c *Choreographer) Update(frame *audio.Frame, dt float64) {
	section := c.classifier.Classify(frame, dt, c.config.SectionDwell)
	desired := FormationForSection(section)

	nowTime := c.now()

	if c.target == nil && desired != c.formation.Type {
		target := c.formationFromFrame(desired, frame)
		c.target = &target
		c.transitionStart = nowTime
		c.logger.Debug("formation transition started", logging.Fields{
			"from": c.formation.Type.String(), "to": desired.String(), "section": section.String(),
		})
	}

	if c.target != nil {
		t := nowTime.Sub(c.transitionStart).Seconds() / c.config.TransitionDuration
		if t >= 1.0 {
			c.formation = *c.target
			c.target = nil
		}
	} else {
		// Continuous drive outside transitions
		c.formation.Cohesion = dsp.SmoothToward(c.formation.Cohesion, dsp.Clamp01(0.3+0.7*frame.Tension), dt, 0.5)
		c.formation.Energy = dsp.SmoothToward(c.formation.Energy, frame.SmoothOverall, dt, 0.3)
		c.formation.Rotation += dt * (0.2 + frame.SmoothOverall)
	}
}

// Formation returns the current formation state, blended when a
// transition is in flight
func (c *Choreographer) Formation() FormationState {
	if c.target == nil {
		return c.formation
	}
	t := c.now().Sub(c.transitionStart).Seconds() / c.config.TransitionDuration
	return BlendFormations(c.formation, *c.target, dsp.Clamp01(t))
}

// TransitionTo starts an explicit transition, used for playback injection
// and user commands
func (c *Choreographer) TransitionTo(target FormationState) {
	c.target = &target
	c.transitionStart = c.now()
}

// Section returns the classifier's current musical section
func (c *Choreographer) Section() Section {
	return c.classifier.Current()
}

func (c *Choreographer) formationFromFrame(t FormationType, frame *audio.Frame) FormationState {
	return FormationState{
		Type:      t,
		Center:    c.formation.Center,
		Radius:    8.0 + 8.0*frame.SmoothOverall,
		Direction: c.formation.Direction,
		Rotation:  c.formation.Rotation,
		Cohesion:  dsp.Clamp01(0.3 + 0.7*frame.Tension),
		Energy:    frame.SmoothOverall,
	}
}
