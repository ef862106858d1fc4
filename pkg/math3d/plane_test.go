package math3d

import (
	"math"
	"testing"
)

func TestPlaneDistance(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    Vec3
		expected float64
	}{
		{"origin", V3(0, 0, 0), 0},
		{"in front", V3(0, 0, 5), 5},
		{"behind", V3(0, 0, -3), -3},
		{"offset XY", V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.Distance(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestPlaneFromPoints(t *testing.T) {
	p := PlaneFromPoints(V3(0, 0, -2), V3(1, 0, -2), V3(0, 1, -2))
	if !p.Normal.ApproxEqual(V3(0, 0, 1), 1e-9) {
		t.Fatalf("normal = %v, want (0, 0, 1)", p.Normal)
	}
	if got := p.Distance(V3(5, 5, 0)); math.Abs(got-2) > 1e-9 {
		t.Errorf("distance = %v, want 2", got)
	}

	if !PlaneFromPoints(V3(0, 0, 0), V3(1, 1, 1), V3(2, 2, 2)).IsZero() {
		t.Error("collinear points should give a zero plane")
	}
}

func TestPlaneSideEpsilon(t *testing.T) {
	p := NewPlane(V3(1, 0, 0), V3(3, 0, 0))

	tests := []struct {
		name  string
		point Vec3
		want  int
	}{
		{"front", V3(4, 0, 0), 1},
		{"behind", V3(2, 0, 0), -1},
		{"on plane", V3(3, 7, -1), 0},
		{"within epsilon", V3(3+Epsilon/2, 0, 0), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Side(tc.point); got != tc.want {
				t.Errorf("Side(%v) = %d, want %d", tc.point, got, tc.want)
			}
		})
	}
}

func TestPlaneTransform(t *testing.T) {
	p := NewPlane(V3(0, 0, 1), V3(0, 0, 2))
	moved := p.Transform(Translate(V3(0, 0, 3)))

	if !moved.Normal.ApproxEqual(V3(0, 0, 1), 1e-9) {
		t.Errorf("normal = %v, want (0, 0, 1)", moved.Normal)
	}
	if math.Abs(moved.Distance(V3(0, 0, 5))) > 1e-9 {
		t.Errorf("translated plane should pass through z=5, D = %v", moved.D)
	}
}

func TestReflection(t *testing.T) {
	mirror := NewPlane(V3(1, 0, 0), V3(4, 0, 0))
	m := Reflection(mirror)

	got := m.MulVec3(V3(1, 2, 3))
	if !got.ApproxEqual(V3(7, 2, 3), 1e-9) {
		t.Errorf("reflected point = %v, want (7, 2, 3)", got)
	}
	if !m.IsMirrored() {
		t.Error("reflection should flip handedness")
	}
	if Translate(V3(1, 0, 0)).IsMirrored() {
		t.Error("translation should not flip handedness")
	}

	// Reflecting twice is the identity.
	back := m.Mul(m).MulVec3(V3(-3, 5, 9))
	if !back.ApproxEqual(V3(-3, 5, 9), 1e-9) {
		t.Errorf("double reflection = %v", back)
	}
}

func TestFromQuat(t *testing.T) {
	s := math.Sqrt(0.5)
	tests := []struct {
		name       string
		x, y, z, w float64
		in, want   Vec3
	}{
		{"identity", 0, 0, 0, 1, V3(1, 2, 3), V3(1, 2, 3)},
		{"quarter turn about Y", 0, s, 0, s, V3(1, 0, 0), V3(0, 0, -1)},
		{"quarter turn about Z", 0, 0, s, s, V3(1, 0, 0), V3(0, 1, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromQuat(tc.x, tc.y, tc.z, tc.w).MulVec3(tc.in)
			if !got.ApproxEqual(tc.want, 1e-9) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
