package volume

import (
	"testing"

	"github.com/taigrr/zonevis/pkg/math3d"
)

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"unit square", square(0, 0.5), 1},
		{"triangle", NewPolygon(math3d.V3(0, 0, 0), math3d.V3(2, 0, 0), math3d.V3(0, 2, 0)), 2},
		{"degenerate", NewPolygon(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0)), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.poly.Area(); got < tc.want-1e-9 || got > tc.want+1e-9 {
				t.Errorf("Area() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPolygonClipKeepsFront(t *testing.T) {
	poly := square(0, 1)
	half := poly.Clip(math3d.Plane{Normal: math3d.V3(1, 0, 0), D: 0})
	if got := half.Area(); got < 1.99 || got > 2.01 {
		t.Errorf("half area = %v, want 2", got)
	}
	for _, v := range half.Points() {
		if v.X < -math3d.Epsilon {
			t.Errorf("vertex %v behind clip plane", v)
		}
	}
}

func TestFromPortal(t *testing.T) {
	// Viewer at origin looking down -Z through a 2x2 window at z=-5.
	origin := math3d.V3(0, 0, 0)
	window := square(-5, 1)

	v, ok := FromPortal(origin, &window, nil)
	if !ok {
		t.Fatal("FromPortal failed")
	}
	if len(v.Planes()) != 5 {
		t.Fatalf("plane count = %d, want 5", len(v.Planes()))
	}

	tests := []struct {
		name string
		box  math3d.Box
		want Containment
	}{
		{"behind window centered", math3d.BoxAround(math3d.V3(0, 0, -10), math3d.V3(0.5, 0.5, 0.5)), Inside},
		{"in front of window", math3d.BoxAround(math3d.V3(0, 0, -2), math3d.V3(0.2, 0.2, 0.2)), Outside},
		{"behind window off axis", math3d.BoxAround(math3d.V3(20, 0, -10), math3d.V3(0.5, 0.5, 0.5)), Outside},
		{"across the edge", math3d.BoxAround(math3d.V3(2, 0, -10), math3d.V3(0.5, 0.5, 0.5)), Mixed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.Box(tc.box); got != tc.want {
				t.Errorf("Box = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFromPortalWindingIndependent(t *testing.T) {
	origin := math3d.V3(0, 0, 0)
	window := square(-5, 1)
	window.Reverse()

	v, ok := FromPortal(origin, &window, nil)
	if !ok {
		t.Fatal("FromPortal failed")
	}
	if got := v.Box(math3d.BoxAround(math3d.V3(0, 0, -10), math3d.V3(0.5, 0.5, 0.5))); got != Inside {
		t.Errorf("reversed window = %v, want inside", got)
	}
}

func TestFromPortalFarPlane(t *testing.T) {
	origin := math3d.V3(0, 0, 0)
	window := square(-5, 1)
	far := math3d.Plane{Normal: math3d.V3(0, 0, 1), D: 20}

	v, ok := FromPortal(origin, &window, &far)
	if !ok {
		t.Fatal("FromPortal failed")
	}
	if got := v.Box(math3d.BoxAround(math3d.V3(0, 0, -40), math3d.V3(0.5, 0.5, 0.5))); got != Outside {
		t.Errorf("past far plane = %v, want outside", got)
	}
}

func TestFromPortalEdgeOn(t *testing.T) {
	window := square(0, 1)
	if _, ok := FromPortal(math3d.V3(3, 0, 0), &window, nil); ok {
		t.Error("FromPortal should fail for an eye in the portal plane")
	}
}

func TestFromOccluderSingleFace(t *testing.T) {
	origin := math3d.V3(0, 0, 0)
	wall := square(-5, 1)

	v, ok := FromOccluder(origin, []Polygon{wall})
	if !ok {
		t.Fatal("FromOccluder failed")
	}

	hidden := math3d.BoxAround(math3d.V3(0, 0, -10), math3d.V3(0.5, 0.5, 0.5))
	if got := v.Box(hidden); got != Inside {
		t.Errorf("box behind wall = %v, want inside", got)
	}
	front := math3d.BoxAround(math3d.V3(0, 0, -2), math3d.V3(0.2, 0.2, 0.2))
	if got := v.Box(front); got != Outside {
		t.Errorf("box before wall = %v, want outside", got)
	}
	beside := math3d.BoxAround(math3d.V3(15, 0, -10), math3d.V3(0.5, 0.5, 0.5))
	if got := v.Box(beside); got != Outside {
		t.Errorf("box beside wall = %v, want outside", got)
	}
}

func TestFromOccluderCube(t *testing.T) {
	origin := math3d.V3(0, 0, 10)
	faces := cubeFaces(math3d.V3(0, 0, 0), 1)

	v, ok := FromOccluder(origin, faces)
	if !ok {
		t.Fatal("FromOccluder failed")
	}
	// Only the +Z face looks at the viewer, its four edges are the silhouette.
	if got := len(v.Planes()); got != 5 {
		t.Errorf("plane count = %d, want 5", got)
	}
	if got := v.Box(math3d.BoxAround(math3d.V3(0, 0, -10), math3d.V3(0.5, 0.5, 0.5))); got != Inside {
		t.Errorf("box in shadow = %v, want inside", got)
	}
}

func TestFromOccluderViewerInside(t *testing.T) {
	faces := cubeFaces(math3d.V3(0, 0, 0), 1)
	if _, ok := FromOccluder(math3d.V3(0, 0, 0), faces); ok {
		t.Error("FromOccluder should fail when the viewer is inside")
	}
}

// cubeFaces returns the six faces of an axis aligned cube, wound so each
// face's plane points outward.
func cubeFaces(c math3d.Vec3, h float64) []Polygon {
	p := func(x, y, z float64) math3d.Vec3 { return c.Add(math3d.V3(x*h, y*h, z*h)) }
	return []Polygon{
		NewPolygon(p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1)),     // +Z
		NewPolygon(p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1), p(-1, -1, -1)), // -Z
		NewPolygon(p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), p(1, -1, 1)),     // +X
		NewPolygon(p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1), p(-1, -1, -1)), // -X
		NewPolygon(p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1), p(-1, 1, -1)),     // +Y
		NewPolygon(p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1)), // -Y
	}
}
