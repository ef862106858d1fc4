package volume

import (
	"github.com/taigrr/zonevis/pkg/math3d"
)

// FromPortal builds the volume of points seen from origin through poly: the
// polygon's plane oriented away from the viewer plus one plane per edge
// through the eye. far, when set, closes the volume (zone fog or view
// distance). ok is false when the eye lies in the polygon's plane, in which
// case nothing meaningful can be built.
func FromPortal(origin math3d.Vec3, poly *Polygon, far *math3d.Plane) (v Volume, ok bool) {
	plane := poly.Plane()
	if plane.IsZero() {
		return v, false
	}
	d := plane.Distance(origin)
	if d > -math3d.Epsilon && d < math3d.Epsilon {
		return v, false
	}
	if d > 0 {
		plane = plane.Flip()
	}
	v.AddPlane(plane)

	center := poly.Centroid()
	for i := 0; i < poly.N; i++ {
		a := poly.Verts[i]
		b := poly.Verts[(i+1)%poly.N]
		if edge, ok := edgePlane(origin, a, b, center); ok {
			v.AddPlane(edge)
		}
	}

	if far != nil {
		v.AddPlane(*far)
	}
	return v, true
}

// FromOccluder builds the anti-portal volume cast by a convex occluder: the
// region hidden behind it as seen from origin. faces are the occluder's
// polygons with outward winding; a single face is treated as two-sided. ok is
// false when no face is turned toward the viewer (for instance the eye is
// inside the occluder).
func FromOccluder(origin math3d.Vec3, faces []Polygon) (v Volume, ok bool) {
	if len(faces) == 0 {
		return v, false
	}

	if len(faces) == 1 {
		face := faces[0]
		plane := face.Plane()
		if plane.IsZero() {
			return v, false
		}
		if plane.Distance(origin) < 0 {
			face.Reverse()
		}
		return FromOccluder(origin, []Polygon{face, reversed(face)})
	}

	var facing [64]bool
	if len(faces) > len(facing) {
		faces = faces[:len(facing)]
	}
	var center math3d.Vec3
	count := 0
	for i := range faces {
		plane := faces[i].Plane()
		facing[i] = !plane.IsZero() && plane.Distance(origin) > math3d.Epsilon
		if facing[i] {
			count++
		}
		center = center.Add(faces[i].Centroid())
	}
	if count == 0 || count == len(faces) {
		return v, false
	}
	center = center.Scale(1 / float64(len(faces)))

	for i := range faces {
		if facing[i] {
			v.AddPlane(faces[i].Plane().Flip())
		}
	}
	for i := range faces {
		if !facing[i] {
			continue
		}
		face := &faces[i]
		for e := 0; e < face.N; e++ {
			a := face.Verts[e]
			b := face.Verts[(e+1)%face.N]
			other := adjacentFace(faces, i, a, b)
			if other >= 0 && facing[other] {
				continue
			}
			if edge, ok := edgePlane(origin, a, b, center); ok {
				v.AddPlane(edge)
			}
		}
	}
	return v, true
}

// edgePlane returns the plane through the eye and edge a-b, facing inside.
func edgePlane(origin, a, b, inside math3d.Vec3) (math3d.Plane, bool) {
	p := math3d.PlaneFromPoints(origin, a, b)
	if p.IsZero() {
		return p, false
	}
	if p.Distance(inside) < 0 {
		p = p.Flip()
	}
	return p, true
}

// adjacentFace finds the face other than skip that shares edge a-b.
func adjacentFace(faces []Polygon, skip int, a, b math3d.Vec3) int {
	const tol = 1e-4
	for i := range faces {
		if i == skip {
			continue
		}
		f := &faces[i]
		for e := 0; e < f.N; e++ {
			c := f.Verts[e]
			d := f.Verts[(e+1)%f.N]
			if (c.ApproxEqual(b, tol) && d.ApproxEqual(a, tol)) || (c.ApproxEqual(a, tol) && d.ApproxEqual(b, tol)) {
				return i
			}
		}
	}
	return -1
}

func reversed(p Polygon) Polygon {
	p.Reverse()
	return p
}
