package math3d

// Plane represents a plane using the equation: Normal·P + D = 0.
// Points with a positive distance lie in front of the plane.
type Plane struct {
	Normal Vec3
	D      float64
}

// NewPlane creates a plane with the given normal passing through point.
func NewPlane(normal, point Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// PlaneFromPoints returns the normalized plane through a, b and c. The normal
// follows the right-hand rule for the winding a -> b -> c. Degenerate input
// yields a zero plane.
func PlaneFromPoints(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if n.LenSq() == 0 {
		return Plane{}
	}
	return NewPlane(n, a)
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// Distance returns the signed distance from the plane to a point.
func (p Plane) Distance(point Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Flip returns the same plane facing the opposite way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Negate(), D: -p.D}
}

// IsZero reports whether the plane is degenerate.
func (p Plane) IsZero() bool {
	return p.Normal.LenSq() == 0
}

// Side classifies a point: 1 in front, -1 behind and 0 within Epsilon of the
// plane.
func (p Plane) Side(point Vec3) int {
	d := p.Distance(point)
	switch {
	case d > Epsilon:
		return 1
	case d < -Epsilon:
		return -1
	}
	return 0
}

// Transform returns the plane carried by an affine transform m.
func (p Plane) Transform(m Mat4) Plane {
	point := m.MulVec3(p.Normal.Scale(-p.D))
	normal := m.Inverse().Transpose3().MulVec3Dir(p.Normal).Normalize()
	return NewPlane(normal, point)
}

// Transpose3 returns m with its upper 3x3 block transposed and translation
// dropped, which is all plane normal transforms need.
func (m Mat4) Transpose3() Mat4 {
	return Mat4{
		m[0], m[4], m[8], 0,
		m[1], m[5], m[9], 0,
		m[2], m[6], m[10], 0,
		0, 0, 0, 1,
	}
}
