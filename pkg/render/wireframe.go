package render

import (
	"image/color"
	"math"

	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/world"
)

// Wireframe is a Sink that draws a frame as lines seen through a camera:
// surfaces are outlined and entities drawn as their bounding boxes. Stencil
// masks are kept per pixel, so a nested pass only draws inside the mirror or
// portal that spawned it.
type Wireframe struct {
	camera  *Camera
	fb      *Framebuffer
	db      world.Database
	stencil []uint8
	used    uint8

	state wireState
	stack []wireState

	view, proj math3d.Mat4
}

type wireState struct {
	transform math3d.Mat4
	test      uint8
}

var _ Sink = (*Wireframe)(nil)

// Wireframe colors per batch kind.
var (
	ColorSurface     = color.RGBA{170, 170, 180, 255}
	ColorEntity      = color.RGBA{90, 200, 120, 255}
	ColorTranslucent = color.RGBA{120, 160, 255, 255}
	ColorSelection   = color.RGBA{255, 120, 40, 255}
)

// NewWireframe creates a wireframe sink drawing db into fb.
func NewWireframe(camera *Camera, fb *Framebuffer, db world.Database) *Wireframe {
	w := &Wireframe{camera: camera, db: db}
	w.Resize(fb)
	return w
}

// Resize switches to a new framebuffer.
func (w *Wireframe) Resize(fb *Framebuffer) {
	w.fb = fb
	w.stencil = make([]uint8, fb.Width*fb.Height)
}

// Begin clears the framebuffer and stencil and picks up the camera.
func (w *Wireframe) Begin(bg Color) {
	w.fb.Clear(bg)
	clear(w.stencil)
	w.used = 0
	w.stack = w.stack[:0]
	w.state = wireState{transform: math3d.Identity()}
	w.view = w.camera.ViewMatrix()
	w.proj = w.camera.ProjectionMatrix()
}

func (w *Wireframe) PushState() {
	w.stack = append(w.stack, w.state)
}

func (w *Wireframe) PopState() {
	if len(w.stack) == 0 {
		panic("render: PopState without PushState")
	}
	w.state = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *Wireframe) SetTransform(m math3d.Mat4) {
	w.state.transform = m
}

func (w *Wireframe) SetStencilTest(mask uint8) {
	w.state.test = mask
}

func (w *Wireframe) AllocStencilMask() (uint8, bool) {
	for i := 1; i <= 7; i++ {
		bit := uint8(1) << uint(i)
		if w.used&bit == 0 {
			w.used |= bit
			return bit, true
		}
	}
	return 0, false
}

func (w *Wireframe) FreeStencilMask(mask uint8) {
	w.used &^= mask
	for i := range w.stencil {
		w.stencil[i] &^= mask
	}
}

// Clear has nothing to reset; lines are drawn without depth.
func (w *Wireframe) Clear(mask uint8) {}

func (w *Wireframe) Draw(b *Batch) {
	switch b.Kind {
	case BatchSurfaces:
		for _, s := range b.Surfaces {
			w.outline(w.db.Surface(s).Verts, ColorSurface)
		}
	case BatchTranslucentSurface:
		for _, s := range b.Surfaces {
			w.outline(w.db.Surface(s).Verts, ColorTranslucent)
		}
	case BatchStencil:
		for _, s := range b.Surfaces {
			verts := w.db.Surface(s).Verts
			w.fill(verts, b.Stencil)
			w.outline(verts, ColorMirror)
		}
	case BatchEntity, BatchStaticMeshes, BatchTerrain, BatchParticles:
		for _, e := range b.Entities {
			w.box(w.db.Entity(e).Bounds, ColorEntity)
		}
	case BatchTranslucentEntity:
		for _, e := range b.Entities {
			w.box(w.db.Entity(e).Bounds, ColorTranslucent)
		}
	case BatchSelection:
		for _, e := range b.Entities {
			w.box(w.db.Entity(e).Bounds.Expand(0.1), ColorSelection)
		}
	case BatchCorona:
		for _, in := range b.Lights {
			w.cross(w.db.Light(in.Light).Position, 0.25, ColorPortal)
		}
	}
}

func (w *Wireframe) outline(verts []math3d.Vec3, c Color) {
	for i := range verts {
		w.line(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (w *Wireframe) box(b math3d.Box, c Color) {
	if b.IsEmpty() {
		return
	}
	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = b.Min
		if i&1 != 0 {
			corners[i].X = b.Max.X
		}
		if i&2 != 0 {
			corners[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			corners[i].Z = b.Max.Z
		}
	}
	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				w.line(corners[i], corners[i|bit], c)
			}
		}
	}
}

func (w *Wireframe) cross(p math3d.Vec3, size float64, c Color) {
	w.line(p.Add(math3d.V3(-size, 0, 0)), p.Add(math3d.V3(size, 0, 0)), c)
	w.line(p.Add(math3d.V3(0, -size, 0)), p.Add(math3d.V3(0, size, 0)), c)
	w.line(p.Add(math3d.V3(0, 0, -size)), p.Add(math3d.V3(0, 0, size)), c)
}

// toView moves a pass-space point into camera space.
func (w *Wireframe) toView(p math3d.Vec3) math3d.Vec3 {
	return w.view.MulVec3(w.state.transform.MulVec3(p))
}

// toScreen projects a camera-space point in front of the near plane.
func (w *Wireframe) toScreen(v math3d.Vec3) (x, y float64) {
	ndc := w.proj.MulVec3(v)
	return (ndc.X + 1) * 0.5 * float64(w.fb.Width), (1 - ndc.Y) * 0.5 * float64(w.fb.Height)
}

// line draws a segment clipped to the near plane and the screen, honoring
// the stencil test.
func (w *Wireframe) line(a, b math3d.Vec3, c Color) {
	va, vb := w.toView(a), w.toView(b)
	near := -w.camera.Near
	if va.Z > near && vb.Z > near {
		return
	}
	if va.Z > near {
		va = va.Lerp(vb, (va.Z-near)/(va.Z-vb.Z))
	} else if vb.Z > near {
		vb = vb.Lerp(va, (vb.Z-near)/(vb.Z-va.Z))
	}
	x0, y0 := w.toScreen(va)
	x1, y1 := w.toScreen(vb)
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(w.fb.Width-1), float64(w.fb.Height-1))
	if !ok {
		return
	}
	test := w.state.test
	plotLine(int(x0), int(y0), int(x1), int(y1), func(x, y int) {
		if test != 0 && w.stencil[y*w.fb.Width+x]&test == 0 {
			return
		}
		w.fb.SetPixel(x, y, c)
	})
}

// fill writes mask into the stencil over the polygon, within the current
// stencil test.
func (w *Wireframe) fill(verts []math3d.Vec3, mask uint8) {
	if len(verts) < 3 {
		return
	}
	near := -w.camera.Near
	pts := make([]math3d.Vec3, 0, len(verts)+1)
	for i := range verts {
		a, b := w.toView(verts[i]), w.toView(verts[(i+1)%len(verts)])
		if a.Z <= near {
			pts = append(pts, a)
		}
		if (a.Z <= near) != (b.Z <= near) {
			pts = append(pts, a.Lerp(b, (a.Z-near)/(a.Z-b.Z)))
		}
	}
	if len(pts) < 3 {
		return
	}
	sx := make([]float64, len(pts))
	sy := make([]float64, len(pts))
	for i, p := range pts {
		sx[i], sy[i] = w.toScreen(p)
	}
	for i := 1; i+1 < len(pts); i++ {
		w.fillTriangle(sx[0], sy[0], sx[i], sy[i], sx[i+1], sy[i+1], mask)
	}
}

func (w *Wireframe) fillTriangle(x0, y0, x1, y1, x2, y2 float64, mask uint8) {
	minX := int(math.Max(0, math.Floor(min(x0, x1, x2))))
	maxX := int(math.Min(float64(w.fb.Width-1), math.Ceil(max(x0, x1, x2))))
	minY := int(math.Max(0, math.Floor(min(y0, y1, y2))))
	maxY := int(math.Min(float64(w.fb.Height-1), math.Ceil(max(y0, y1, y2))))

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	test := w.state.test
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			e0 := edge(x1, y1, x2, y2, px, py) / area
			e1 := edge(x2, y2, x0, y0, px, py) / area
			e2 := edge(x0, y0, x1, y1, px, py) / area
			if e0 < 0 || e1 < 0 || e2 < 0 {
				continue
			}
			i := y*w.fb.Width + x
			if test != 0 && w.stencil[i]&test == 0 {
				continue
			}
			w.stencil[i] |= mask
		}
	}
}

// edge is twice the signed area of the triangle (a, b, p).
func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// clipSegment clips a segment to [0, maxX] x [0, maxY] (Liang-Barsky).
func clipSegment(x0, y0, x1, y1, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	for _, c := range [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
