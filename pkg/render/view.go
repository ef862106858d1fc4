package render

import (
	"github.com/taigrr/zonevis/pkg/world"
)

// ShowFlags toggle optional parts of a frame.
type ShowFlags uint32

const (
	ShowBSP ShowFlags = 1 << iota
	ShowTerrain
	StencilMirrors
	StaticMeshBatching
	ShowCoronas
	ShowParticles
	ShowSelection
)

// DefaultShowFlags enables everything.
const DefaultShowFlags = ShowBSP | ShowTerrain | StencilMirrors | StaticMeshBatching |
	ShowCoronas | ShowParticles | ShowSelection

// Has reports whether every flag in f is set.
func (s ShowFlags) Has(f ShowFlags) bool {
	return s&f == f
}

// View describes one frame to render.
type View struct {
	Camera *Camera
	Flags  ShowFlags
	// Time in seconds drives light fades and trace timers.
	Time float64
	// Filter is the gameplay relevance test; nil accepts every entity that is
	// not hidden. Results for static entities are cached until the level's
	// revision changes.
	Filter func(index int, e *world.Entity) bool
}

// Options are renderer-wide tunables.
type Options struct {
	// MaxNesting bounds the depth of nested mirror, warp and sky passes. The
	// main pass has depth 0; a pass at depth MaxNesting-1 spawns no children.
	MaxNesting int
	// MaxLightsPerEntity caps the lights handed to the sink per entity.
	MaxLightsPerEntity int
	// TraceInterval is the time in seconds between occlusion traces of a light.
	TraceInterval float64
	// FadeFrequency is the angular frequency of light fades.
	FadeFrequency float64
}

// DefaultOptions returns the default tunables.
func DefaultOptions() Options {
	return Options{
		MaxNesting:         4,
		MaxLightsPerEntity: 8,
		TraceInterval:      0.25,
		FadeFrequency:      8,
	}
}
