package math

import (
	"math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			want := float32(0)
			if r == c {
				want = 1
			}
			if m.At(r, c) != want {
				t.Errorf("Identity[%d][%d] = %v, want %v", r, c, m.At(r, c), want)
			}
		}
	}
}

func TestFromRowsColumnMajor(t *testing.T) {
	m := FromRows([4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	})

	// First column is stored first.
	want := Mat4{1, 5, 9, 13, 2, 6, 10, 14, 3, 7, 11, 15, 4, 8, 12, 16}
	if m != want {
		t.Errorf("FromRows storage = %v, want %v", m, want)
	}
	if m.At(0, 3) != 4 {
		t.Errorf("At(0,3) = %v, want 4", m.At(0, 3))
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()
	if tr.At(3, 0) != 1 || tr.At(3, 1) != 2 || tr.At(3, 2) != 3 {
		t.Errorf("Transpose did not move translation to the bottom row: %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("Transpose should be an involution")
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	if p := m.Translation(); p != (Vec3{10, 20, 30}) {
		t.Errorf("Translation = %v, want {10 20 30}", p)
	}
	d := m.TransformDirection(Vec3{1, 2, 3})
	if d != (Vec3{1, 2, 3}) {
		t.Errorf("TransformDirection should ignore translation, got %v", d)
	}
}

func TestRotateX(t *testing.T) {
	tests := []struct {
		name  string
		angle float32
		in    Vec3
		want  Vec3
	}{
		{"y to z", float32(math.Pi / 2), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"z to -y", float32(math.Pi / 2), Vec3{0, 0, 1}, Vec3{0, -1, 0}},
		{"minus 90 y to -z", -float32(math.Pi / 2), Vec3{0, 1, 0}, Vec3{0, 0, -1}},
		{"x unchanged", 1.234, Vec3{1, 0, 0}, Vec3{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateX(tt.angle).TransformDirection(tt.in)
			if !got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("RotateX(%v) * %v = %v, want %v", tt.angle, tt.in, got, tt.want)
			}
		})
	}
}

func TestRotateXInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateY(0.3))
	back := RotateX(Radians(90)).Mul(RotateX(Radians(-90)).Mul(m))
	if !back.ApproxEqual(m, 1e-5) {
		t.Errorf("RotateX(90)*RotateX(-90)*M != M: %v vs %v", back, m)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 2, 2))
	if Identity().Mul(m) != m || m.Mul(Identity()) != m {
		t.Error("Multiplying by identity should not change the matrix")
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate: the translation is not scaled.
	m := Translate(1, 0, 0).Mul(Scale(2, 2, 2))
	if p := m.Translation(); abs(p.X-1) > 1e-6 {
		t.Errorf("T*S translation = %v, want x=1", p)
	}
	if d := m.TransformDirection(Vec3{1, 0, 0}); abs(d.X-2) > 1e-6 {
		t.Errorf("T*S applied to direction (1,0,0) = %v, want x=2", d)
	}
	// Translate first, then scale: the translation is scaled.
	if p := Scale(2, 2, 2).Mul(Translate(1, 0, 0)).Translation(); abs(p.X-2) > 1e-6 {
		t.Errorf("S*T translation = %v, want x=2", p)
	}
}

func TestRadians(t *testing.T) {
	if abs(Radians(180)-float32(math.Pi)) > 1e-6 {
		t.Errorf("Radians(180) = %v", Radians(180))
	}
}
