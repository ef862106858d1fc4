// Package volume implements convex visibility volumes: the set of points a
// viewer can see through a frustum or a chain of portals, bounded by a small
// fixed number of planes.
package volume

import (
	"math"

	"github.com/taigrr/zonevis/pkg/math3d"
)

// MaxPlanes bounds the planes of a Volume. Planes past the limit are dropped,
// which makes the volume larger than the true region but never smaller.
const MaxPlanes = 20

// Containment is the result of testing a shape against a volume. A shape that
// straddles a boundary reports Mixed, which has both bits set.
type Containment uint8

const (
	Inside Containment = 1 << iota
	Outside
	Mixed = Inside | Outside
)

// String returns a short name for the result.
func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Mixed:
		return "mixed"
	}
	return "none"
}

// Volume is an intersection of half-spaces. Each plane normal points into the
// volume. A Volume is immutable once it has been handed to a zone.
type Volume struct {
	planes    [MaxPlanes]math3d.Plane
	n         int
	truncated bool
}

// FromPlanes builds a volume from inward facing planes.
func FromPlanes(planes ...math3d.Plane) Volume {
	var v Volume
	for _, p := range planes {
		v.AddPlane(p)
	}
	return v
}

// AddPlane appends a bounding plane. When the volume is full the plane is
// ignored and false is returned.
func (v *Volume) AddPlane(p math3d.Plane) bool {
	if v.n >= MaxPlanes {
		v.truncated = true
		return false
	}
	v.planes[v.n] = p
	v.n++
	return true
}

// Planes returns the bounding planes.
func (v *Volume) Planes() []math3d.Plane {
	return v.planes[:v.n]
}

// Truncated reports whether any plane was dropped for lack of capacity.
func (v *Volume) Truncated() bool {
	return v.truncated
}

// BoxCheck classifies the box given by center and half-size extent.
func (v *Volume) BoxCheck(center, extent math3d.Vec3) Containment {
	result := Inside
	for i := 0; i < v.n; i++ {
		p := &v.planes[i]
		push := math.Abs(p.Normal.X)*extent.X + math.Abs(p.Normal.Y)*extent.Y + math.Abs(p.Normal.Z)*extent.Z
		d := p.Distance(center)
		if d < -push {
			return Outside
		}
		if d < push {
			result |= Outside
		}
	}
	return result
}

// Box is BoxCheck for a math3d.Box.
func (v *Volume) Box(b math3d.Box) Containment {
	return v.BoxCheck(b.Center(), b.Extent())
}

// SphereCheck classifies a sphere.
func (v *Volume) SphereCheck(s math3d.Sphere) Containment {
	result := Inside
	for i := 0; i < v.n; i++ {
		d := v.planes[i].Distance(s.Center)
		if d < -s.Radius {
			return Outside
		}
		if d < s.Radius {
			result |= Outside
		}
	}
	return result
}

// ContainsPoint reports whether p lies inside every plane, within Epsilon.
func (v *Volume) ContainsPoint(p math3d.Vec3) bool {
	for i := 0; i < v.n; i++ {
		if v.planes[i].Distance(p) < -math3d.Epsilon {
			return false
		}
	}
	return true
}

// ContainsPolygon reports whether every vertex of poly lies inside the volume.
func (v *Volume) ContainsPolygon(poly *Polygon) bool {
	if poly.Empty() {
		return false
	}
	for i := 0; i < poly.N; i++ {
		if !v.ContainsPoint(poly.Verts[i]) {
			return false
		}
	}
	return true
}

// ClipPolygon returns the part of poly inside the volume. The result has zero
// area when the polygon is clipped away entirely.
func (v *Volume) ClipPolygon(poly Polygon) Polygon {
	for i := 0; i < v.n && !poly.Empty(); i++ {
		poly = poly.Clip(v.planes[i])
	}
	return poly
}

// Transform returns the volume carried by an affine transform.
func (v *Volume) Transform(m math3d.Mat4) Volume {
	out := Volume{n: v.n, truncated: v.truncated}
	for i := 0; i < v.n; i++ {
		out.planes[i] = v.planes[i].Transform(m)
	}
	return out
}
