package render

import (
	"github.com/taigrr/zonevis/pkg/math3d"
	"github.com/taigrr/zonevis/pkg/volume"
)

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]math3d.Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// Uses the Gribb/Hartmann method for extracting planes from the combined matrix.
// The resulting planes have normals pointing inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	// For column-major matrix m, row i element j is at m[i + j*4].
	row := func(i int) (float64, float64, float64, float64) {
		return m[i], m[i+4], m[i+8], m[i+12]
	}
	x0, y0, z0, w0 := row(0)
	x1, y1, z1, w1 := row(1)
	x2, y2, z2, w2 := row(2)
	x3, y3, z3, w3 := row(3)

	f.Planes[FrustumLeft] = math3d.Plane{Normal: math3d.V3(x3+x0, y3+y0, z3+z0), D: w3 + w0}
	f.Planes[FrustumRight] = math3d.Plane{Normal: math3d.V3(x3-x0, y3-y0, z3-z0), D: w3 - w0}
	f.Planes[FrustumBottom] = math3d.Plane{Normal: math3d.V3(x3+x1, y3+y1, z3+z1), D: w3 + w1}
	f.Planes[FrustumTop] = math3d.Plane{Normal: math3d.V3(x3-x1, y3-y1, z3-z1), D: w3 - w1}
	f.Planes[FrustumNear] = math3d.Plane{Normal: math3d.V3(x3+x2, y3+y2, z3+z2), D: w3 + w2}
	f.Planes[FrustumFar] = math3d.Plane{Normal: math3d.V3(x3-x2, y3-y2, z3-z2), D: w3 - w2}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}

	return f
}

// Frustum returns the current view frustum of the camera.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// Volume returns the visibility volume of the frustum. The near plane is left
// out so that the eye itself lies on the volume's boundary.
func (f Frustum) Volume() volume.Volume {
	return volume.FromPlanes(
		f.Planes[FrustumLeft],
		f.Planes[FrustumRight],
		f.Planes[FrustumBottom],
		f.Planes[FrustumTop],
		f.Planes[FrustumFar],
	)
}
