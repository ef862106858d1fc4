package volume

import (
	"github.com/taigrr/zonevis/pkg/math3d"
)

// MaxPolygonVerts bounds the vertex count of a Polygon. Clipping a convex
// polygon by one plane adds at most one vertex, so portal polygons stay well
// under it in practice; extra vertices are dropped.
const MaxPolygonVerts = 32

// Polygon is a fixed-capacity convex polygon. It is a plain value so the
// traversal can clip portals without heap allocation.
type Polygon struct {
	Verts [MaxPolygonVerts]math3d.Vec3
	N     int
}

// NewPolygon builds a polygon from points, truncating at MaxPolygonVerts.
func NewPolygon(points ...math3d.Vec3) Polygon {
	var p Polygon
	for _, v := range points {
		p.Add(v)
	}
	return p
}

// Add appends a vertex and reports whether there was room for it.
func (p *Polygon) Add(v math3d.Vec3) bool {
	if p.N >= MaxPolygonVerts {
		return false
	}
	p.Verts[p.N] = v
	p.N++
	return true
}

// Points returns the live vertices.
func (p *Polygon) Points() []math3d.Vec3 {
	return p.Verts[:p.N]
}

// Empty reports whether the polygon has been clipped away.
func (p *Polygon) Empty() bool {
	return p.N < 3
}

// Plane returns the plane of the polygon following its winding.
func (p *Polygon) Plane() math3d.Plane {
	if p.N < 3 {
		return math3d.Plane{}
	}
	n := p.normalSum().Normalize()
	if n.LenSq() == 0 {
		return math3d.Plane{}
	}
	return math3d.NewPlane(n, p.Verts[0])
}

// Area returns the polygon area; zero for degenerate or clipped-away polygons.
func (p *Polygon) Area() float64 {
	if p.N < 3 {
		return 0
	}
	return p.normalSum().Len() * 0.5
}

// normalSum is Newell's method: twice the area-weighted normal.
func (p *Polygon) normalSum() math3d.Vec3 {
	var n math3d.Vec3
	for i := 0; i < p.N; i++ {
		a := p.Verts[i]
		b := p.Verts[(i+1)%p.N]
		n = n.Add(a.Cross(b))
	}
	return n
}

// Centroid returns the vertex average.
func (p *Polygon) Centroid() math3d.Vec3 {
	var c math3d.Vec3
	if p.N == 0 {
		return c
	}
	for i := 0; i < p.N; i++ {
		c = c.Add(p.Verts[i])
	}
	return c.Scale(1 / float64(p.N))
}

// Bounds returns the box around the vertices.
func (p *Polygon) Bounds() math3d.Box {
	b := math3d.EmptyBox()
	for i := 0; i < p.N; i++ {
		b = b.Add(p.Verts[i])
	}
	return b
}

// Reverse flips the winding in place.
func (p *Polygon) Reverse() {
	for i, j := 0, p.N-1; i < j; i, j = i+1, j-1 {
		p.Verts[i], p.Verts[j] = p.Verts[j], p.Verts[i]
	}
}

// Transform returns the polygon with every vertex carried by m.
func (p *Polygon) Transform(m math3d.Mat4) Polygon {
	out := Polygon{N: p.N}
	for i := 0; i < p.N; i++ {
		out.Verts[i] = m.MulVec3(p.Verts[i])
	}
	if m.IsMirrored() {
		out.Reverse()
	}
	return out
}

// Clip keeps the part of the polygon in front of plane (Sutherland-Hodgman).
// Vertices within Epsilon of the plane are kept.
func (p *Polygon) Clip(plane math3d.Plane) Polygon {
	var out Polygon
	if p.N == 0 {
		return out
	}

	prev := p.Verts[p.N-1]
	prevDist := plane.Distance(prev)
	for i := 0; i < p.N; i++ {
		cur := p.Verts[i]
		curDist := plane.Distance(cur)

		curIn := curDist >= -math3d.Epsilon
		prevIn := prevDist >= -math3d.Epsilon
		if curIn != prevIn {
			t := prevDist / (prevDist - curDist)
			out.Add(prev.Lerp(cur, t))
		}
		if curIn {
			out.Add(cur)
		}
		prev, prevDist = cur, curDist
	}
	if out.N < 3 {
		out.N = 0
	}
	return out
}
