package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := FromQuat(0, math.Sin(0.25), 0, math.Cos(0.25))

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(FromQuat(0, math.Sin(0.25), 0, math.Cos(0.25)))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkPlaneDistance(b *testing.B) {
	p := PlaneFromPoints(V3(0, 0, 0), V3(1, 0, 0), V3(0, 1, 0))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = p.Distance(v)
	}
}

func BenchmarkBoxPlaneSide(b *testing.B) {
	p := NewPlane(V3(0, 0, 1), V3(0, 0, -5))
	box := NewBox(V3(-1, -1, -7), V3(1, 1, -3))

	for b.Loop() {
		_ = box.PlaneSide(p)
	}
}

func BenchmarkReflection(b *testing.B) {
	p := NewPlane(V3(1, 0, 0), V3(4, 0, 0))

	for b.Loop() {
		_ = Reflection(p)
	}
}
