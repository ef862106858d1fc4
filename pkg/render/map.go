package render

import (
	"math"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
	"github.com/taigrr/zonevis/pkg/zone"
)

// MapProjection maps the level's XZ plane onto a framebuffer, +X right and
// -Z up, preserving aspect ratio.
type MapProjection struct {
	origin math3d.Vec3
	scale  float64
	height int
}

// NewMapProjection fits bounds into a w x h raster with a one pixel border.
func NewMapProjection(bounds math3d.Box, w, h int) MapProjection {
	size := bounds.Max.Sub(bounds.Min)
	sx := float64(w-2) / math.Max(size.X, math3d.Epsilon)
	sz := float64(h-2) / math.Max(size.Z, math3d.Epsilon)
	return MapProjection{origin: bounds.Min, scale: math.Min(sx, sz), height: h}
}

// Project returns the pixel for a world point.
func (m MapProjection) Project(p math3d.Vec3) (x, y int) {
	x = 1 + int(math.Floor((p.X-m.origin.X)*m.scale))
	y = m.height - 2 - int(math.Floor((p.Z-m.origin.Z)*m.scale))
	return x, y
}

// DrawMap draws a top-down picture of a frame into fb: every leaf, tinted by
// whether its zone was active and whether the main or a nested pass drew it,
// the level's portals and mirrors, and the eye.
func DrawMap(fb *Framebuffer, db world.Database, rep *Report, eye math3d.Vec3) {
	fb.Clear(ColorBackground)
	bounds := db.Node(db.Root()).Bounds
	if bounds.IsEmpty() {
		return
	}
	proj := NewMapProjection(bounds, fb.Width, fb.Height)

	var active zone.Mask
	main := make(map[int]bool)
	nested := make(map[int]bool)
	for i := range rep.Passes {
		p := &rep.Passes[i]
		for _, li := range p.Leaves {
			if p.Kind == PassMain {
				main[li] = true
			} else {
				nested[li] = true
			}
		}
		if p.Kind == PassMain {
			active = p.Zones
		}
	}

	for li := 0; li < db.NumLeaves(); li++ {
		leaf := db.Leaf(li)
		if leaf.Bounds.IsEmpty() {
			continue
		}
		c := ColorLeaf
		switch {
		case main[li]:
			c = ColorVisited
		case nested[li]:
			c = ColorNested
		case active.Has(leaf.Zone):
			c = ColorActiveZone
		}
		x0, y0 := proj.Project(leaf.Bounds.Min)
		x1, y1 := proj.Project(leaf.Bounds.Max)
		fb.FillRect(x0, y0, x1, y1, c)
	}

	for si := 0; si < db.NumSurfaces(); si++ {
		s := db.Surface(si)
		var c = ColorPortal
		switch s.Kind {
		case world.Portal:
		case world.Mirror:
			c = ColorMirror
		default:
			continue
		}
		for i := range s.Verts {
			x0, y0 := proj.Project(s.Verts[i])
			x1, y1 := proj.Project(s.Verts[(i+1)%len(s.Verts)])
			fb.DrawLine(x0, y0, x1, y1, c)
		}
	}

	ex, ey := proj.Project(eye)
	fb.FillRect(ex-1, ey-1, ex+1, ey+1, ColorEye)
}
