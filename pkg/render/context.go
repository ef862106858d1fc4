package render

import (
	"github.com/taigrr/zonevis/pkg/world"
)

// FrameContext is the state shared by every pass of one frame. The main pass
// builds it once; nested passes reuse it.
type FrameContext struct {
	// Frame counts RenderView calls.
	Frame uint64
	View  *View

	built      bool
	dynamic    [][]int
	lights     []int
	projectors []int
	truncated  bool
}

// Built reports whether the entity and light lists exist for this frame.
func (c *FrameContext) Built() bool {
	return c.built
}

// begin clears the latch for a new frame.
func (c *FrameContext) begin(v *View) {
	c.Frame++
	c.View = v
	c.built = false
}

// build files every dynamic entity under the leaves it touches and collects
// the dynamic lights and projectors. It runs at most once per frame.
func (c *FrameContext) build(db world.Database) {
	if c.built {
		return
	}
	c.built = true

	n := db.NumLeaves()
	if cap(c.dynamic) < n {
		c.dynamic = make([][]int, n)
	}
	c.dynamic = c.dynamic[:n]
	for i := range c.dynamic {
		c.dynamic[i] = c.dynamic[i][:0]
	}
	for i := 0; i < db.NumEntities(); i++ {
		e := db.Entity(i)
		if e.Static {
			continue
		}
		db.BoxLeaves(e.Bounds, func(leaf int) {
			c.dynamic[leaf] = append(c.dynamic[leaf], i)
		})
	}

	c.lights = c.lights[:0]
	c.truncated = false
	for i := 0; i < db.NumLights(); i++ {
		if !db.Light(i).Dynamic {
			continue
		}
		if len(c.lights) == MaxCandidates {
			c.truncated = true
			break
		}
		c.lights = append(c.lights, i)
	}

	c.projectors = c.projectors[:0]
	for i := 0; i < db.NumProjectors() && i < MaxCandidates; i++ {
		c.projectors = append(c.projectors, i)
	}
	if db.NumProjectors() > MaxCandidates {
		c.truncated = true
	}
}

// Dynamic returns the dynamic entities touching leaf.
func (c *FrameContext) Dynamic(leaf int) []int {
	if leaf < 0 || leaf >= len(c.dynamic) {
		return nil
	}
	return c.dynamic[leaf]
}
