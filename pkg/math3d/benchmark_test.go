package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	a := V3(1, 2, 3)
	c := V3(4, 5, 6)

	for b.Loop() {
		_ = a.Cross(c)
	}
}

func BenchmarkVec3RotateAround(b *testing.B) {
	v := V3(1, 2, 3)
	axis := V3(0, 1, 0)

	for b.Loop() {
		_ = v.RotateAround(axis, 0.01)
	}
}
