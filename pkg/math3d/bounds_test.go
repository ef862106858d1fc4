package math3d

import (
	"testing"
)

func TestBoxBasics(t *testing.T) {
	box := NewBox(V3(-1, -2, -3), V3(1, 2, 3))

	if c := box.Center(); c != V3(0, 0, 0) {
		t.Errorf("center = %v, want (0, 0, 0)", c)
	}
	if e := box.Extent(); e != V3(1, 2, 3) {
		t.Errorf("extent = %v, want (1, 2, 3)", e)
	}
	if !EmptyBox().IsEmpty() {
		t.Error("EmptyBox should be empty")
	}
	if got := EmptyBox().Add(V3(1, 1, 1)); got.Min != V3(1, 1, 1) || got.Max != V3(1, 1, 1) {
		t.Errorf("EmptyBox().Add = %v", got)
	}
}

func TestBoxContainsPoint(t *testing.T) {
	box := NewBox(V3(0, 0, 0), V3(10, 10, 10))

	tests := []struct {
		name     string
		point    Vec3
		expected bool
	}{
		{"center", V3(5, 5, 5), true},
		{"corner min", V3(0, 0, 0), true},
		{"corner max", V3(10, 10, 10), true},
		{"outside X", V3(11, 5, 5), false},
		{"outside Y", V3(5, -1, 5), false},
		{"outside Z", V3(5, 5, 15), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestBoxPlaneSide(t *testing.T) {
	p := NewPlane(V3(0, 0, 1), V3(0, 0, 0))

	tests := []struct {
		name string
		box  Box
		want int
	}{
		{"front", NewBox(V3(-1, -1, 1), V3(1, 1, 2)), 1},
		{"behind", NewBox(V3(-1, -1, -3), V3(1, 1, -2)), -1},
		{"straddling", NewBox(V3(-1, -1, -1), V3(1, 1, 1)), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.box.PlaneSide(p); got != tc.want {
				t.Errorf("PlaneSide = %d, want %d", got, tc.want)
			}
			if got := tc.box.Sphere().PlaneSide(p); tc.want == 0 && got != 0 {
				t.Errorf("sphere of straddling box should straddle, got %d", got)
			}
		})
	}
}

func TestBoxTransform(t *testing.T) {
	box := NewBox(V3(-1, -1, -1), V3(1, 1, 1))

	moved := box.Transform(Translate(V3(10, 20, 30)))
	if moved.Min != V3(9, 19, 29) || moved.Max != V3(11, 21, 31) {
		t.Errorf("translated box = %v", moved)
	}

	scaled := box.Transform(Scale(V3(2, 2, 2)))
	if scaled.Min != V3(-2, -2, -2) || scaled.Max != V3(2, 2, 2) {
		t.Errorf("scaled box = %v", scaled)
	}
}

func TestBoxIntersects(t *testing.T) {
	a := NewBox(V3(0, 0, 0), V3(2, 2, 2))
	if !a.Intersects(NewBox(V3(1, 1, 1), V3(3, 3, 3))) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects(NewBox(V3(3, 0, 0), V3(4, 2, 2))) {
		t.Error("separated boxes should not intersect")
	}
}
