package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in the last column (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestZUpToYUp(t *testing.T) {
	m := ZUpToYUp(0.5)

	// Quake up (+Z) becomes engine up (+Y), Quake +Y becomes engine -Z
	got := m.TransformVec3(Vec3{2, 4, 8})
	want := Vec3{1, 4, -2}
	if got != want {
		t.Errorf("ZUpToYUp: got %v, want %v", got, want)
	}
}

func TestZUpToYUpThenTranslate(t *testing.T) {
	m := Translate(0, 1, 0).Mul(ZUpToYUp(1))

	got := m.TransformVec3(Vec3{0, 0, 1})
	want := Vec3{0, 2, 0}
	if got != want {
		t.Errorf("Translate * ZUpToYUp: got %v, want %v", got, want)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	// The eye maps to the view-space origin
	got := m.TransformVec3(Vec3{0, 0, 5})
	if abs(got.X) > 1e-5 || abs(got.Y) > 1e-5 || abs(got.Z) > 1e-5 {
		t.Errorf("LookAt eye: got %v, want origin", got)
	}
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestInverse(t *testing.T) {
	m := Translate(3, -2, 7).Mul(ZUpToYUp(0.5))
	got := m.Mul(m.Inverse())
	want := Identity()
	for i := range want {
		if abs(got[i]-want[i]) > 1e-5 {
			t.Errorf("M * M^-1 [%d]: got %f, want %f", i, got[i], want[i])
		}
	}

	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestMulVec4(t *testing.T) {
	v := Translate(1, 2, 3).MulVec4(Vec4{1, 1, 1, 1})
	if v != (Vec4{2, 3, 4, 1}) {
		t.Errorf("MulVec4: got %v", v)
	}
}
