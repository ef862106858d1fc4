package math3d

import "math"

// Box represents an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// NewBox creates a Box from min and max points.
func NewBox(min, max Vec3) Box {
	return Box{Min: min, Max: max}
}

// BoxAround returns the box centered on c with half-size extent.
func BoxAround(c, extent Vec3) Box {
	return Box{Min: c.Sub(extent), Max: c.Add(extent)}
}

// EmptyBox returns an inverted box that any Add call will replace.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: V3(inf, inf, inf), Max: V3(-inf, -inf, -inf)}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the center of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns the half size of the box.
func (b Box) Extent() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Add grows the box to include p.
func (b Box) Add(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the box bounding both b and o.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Expand grows the box by d on every side.
func (b Box) Expand(d float64) Box {
	v := V3(d, d, d)
	return Box{Min: b.Min.Sub(v), Max: b.Max.Add(v)}
}

// ContainsPoint returns true if the point is inside the box.
func (b Box) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// PlaneSide classifies the box against p: 1 fully in front, -1 fully behind,
// 0 straddling.
func (b Box) PlaneSide(p Plane) int {
	c, e := b.Center(), b.Extent()
	push := math.Abs(p.Normal.X)*e.X + math.Abs(p.Normal.Y)*e.Y + math.Abs(p.Normal.Z)*e.Z
	d := p.Distance(c)
	switch {
	case d > push:
		return 1
	case d < -push:
		return -1
	}
	return 0
}

// Transform returns the box bounding all eight corners of b after m.
func (b Box) Transform(m Mat4) Box {
	out := EmptyBox()
	for i := range 8 {
		corner := V3(
			pick(i&1 != 0, b.Max.X, b.Min.X),
			pick(i&2 != 0, b.Max.Y, b.Min.Y),
			pick(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		out = out.Add(m.MulVec3(corner))
	}
	return out
}

// Sphere returns the sphere bounding the box.
func (b Box) Sphere() Sphere {
	return Sphere{Center: b.Center(), Radius: b.Extent().Len()}
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float64
}

// Box returns the box bounding the sphere.
func (s Sphere) Box() Box {
	return BoxAround(s.Center, V3(s.Radius, s.Radius, s.Radius))
}

// PlaneSide classifies the sphere against p like Box.PlaneSide.
func (s Sphere) PlaneSide(p Plane) int {
	d := p.Distance(s.Center)
	switch {
	case d > s.Radius:
		return 1
	case d < -s.Radius:
		return -1
	}
	return 0
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
