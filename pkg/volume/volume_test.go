package volume

import (
	"testing"

	"github.com/taigrr/zonevis/pkg/math3d"
)

// unitCube is the volume -1 <= x,y,z <= 1.
func unitCube() Volume {
	return FromPlanes(
		math3d.Plane{Normal: math3d.V3(1, 0, 0), D: 1},
		math3d.Plane{Normal: math3d.V3(-1, 0, 0), D: 1},
		math3d.Plane{Normal: math3d.V3(0, 1, 0), D: 1},
		math3d.Plane{Normal: math3d.V3(0, -1, 0), D: 1},
		math3d.Plane{Normal: math3d.V3(0, 0, 1), D: 1},
		math3d.Plane{Normal: math3d.V3(0, 0, -1), D: 1},
	)
}

func TestBoxCheck(t *testing.T) {
	v := unitCube()

	tests := []struct {
		name   string
		center math3d.Vec3
		extent math3d.Vec3
		want   Containment
	}{
		{"inside", math3d.V3(0, 0, 0), math3d.V3(0.5, 0.5, 0.5), Inside},
		{"outside", math3d.V3(5, 0, 0), math3d.V3(0.5, 0.5, 0.5), Outside},
		{"straddles", math3d.V3(1, 0, 0), math3d.V3(0.5, 0.5, 0.5), Mixed},
		{"encloses", math3d.V3(0, 0, 0), math3d.V3(4, 4, 4), Mixed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.BoxCheck(tc.center, tc.extent); got != tc.want {
				t.Errorf("BoxCheck = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMixedHasBothBits(t *testing.T) {
	if Mixed&Inside == 0 || Mixed&Outside == 0 {
		t.Fatal("Mixed must carry both bits")
	}
}

func TestSphereCheck(t *testing.T) {
	v := unitCube()

	if got := v.SphereCheck(math3d.Sphere{Center: math3d.V3(0, 0, 0), Radius: 0.5}); got != Inside {
		t.Errorf("inner sphere = %v, want inside", got)
	}
	if got := v.SphereCheck(math3d.Sphere{Center: math3d.V3(0, 3, 0), Radius: 0.5}); got != Outside {
		t.Errorf("far sphere = %v, want outside", got)
	}
	if got := v.SphereCheck(math3d.Sphere{Center: math3d.V3(0, 1.2, 0), Radius: 0.5}); got != Mixed {
		t.Errorf("edge sphere = %v, want mixed", got)
	}
}

func TestEmptyVolumeContainsEverything(t *testing.T) {
	var v Volume
	if got := v.BoxCheck(math3d.V3(100, 0, 0), math3d.V3(1, 1, 1)); got != Inside {
		t.Errorf("BoxCheck on empty volume = %v, want inside", got)
	}
}

func TestAddPlaneTruncates(t *testing.T) {
	var v Volume
	for i := 0; i < MaxPlanes; i++ {
		if !v.AddPlane(math3d.Plane{Normal: math3d.V3(0, 0, 1), D: float64(i)}) {
			t.Fatalf("plane %d rejected before capacity", i)
		}
	}
	if v.Truncated() {
		t.Fatal("volume truncated at exact capacity")
	}
	if v.AddPlane(math3d.Plane{Normal: math3d.V3(1, 0, 0)}) {
		t.Error("AddPlane past capacity should fail")
	}
	if !v.Truncated() {
		t.Error("Truncated() = false after dropping a plane")
	}
	if len(v.Planes()) != MaxPlanes {
		t.Errorf("len(Planes()) = %d, want %d", len(v.Planes()), MaxPlanes)
	}
}

func TestClipPolygon(t *testing.T) {
	v := unitCube()

	t.Run("inside unchanged", func(t *testing.T) {
		poly := square(0, 0.5)
		got := v.ClipPolygon(poly)
		if got.N != 4 || got.Area() < 0.99 || got.Area() > 1.01 {
			t.Errorf("clipped = %d verts area %v, want 4 verts area 1", got.N, got.Area())
		}
	})

	t.Run("partially clipped", func(t *testing.T) {
		poly := square(0, 2)
		got := v.ClipPolygon(poly)
		if got.Area() < 3.99 || got.Area() > 4.01 {
			t.Errorf("area = %v, want 4", got.Area())
		}
	})

	t.Run("clipped away", func(t *testing.T) {
		poly := square(5, 0.5)
		got := v.ClipPolygon(poly)
		if got.Area() != 0 {
			t.Errorf("area = %v, want 0", got.Area())
		}
	})
}

func TestContainsPolygon(t *testing.T) {
	v := unitCube()
	inner := square(0, 0.5)
	outer := square(0, 2)
	if !v.ContainsPolygon(&inner) {
		t.Error("inner square should be contained")
	}
	if v.ContainsPolygon(&outer) {
		t.Error("outer square should not be contained")
	}
}

func TestVolumeTransform(t *testing.T) {
	v := unitCube()
	moved := v.Transform(math3d.Translate(math3d.V3(10, 0, 0)))
	if got := moved.BoxCheck(math3d.V3(10, 0, 0), math3d.V3(0.5, 0.5, 0.5)); got != Inside {
		t.Errorf("translated check = %v, want inside", got)
	}
	if got := moved.BoxCheck(math3d.V3(0, 0, 0), math3d.V3(0.5, 0.5, 0.5)); got != Outside {
		t.Errorf("old position = %v, want outside", got)
	}
}

// square returns an axis-aligned square in the plane z=z with half size h,
// wound counter-clockwise when seen from +Z.
func square(z, h float64) Polygon {
	return NewPolygon(
		math3d.V3(-h, -h, z),
		math3d.V3(h, -h, z),
		math3d.V3(h, h, z),
		math3d.V3(-h, h, z),
	)
}
