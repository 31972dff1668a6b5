package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"axis", Vec3{0, 5, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{3, 0, 4}, Vec3{0.6, 0, 0.8}},
		{"zero stays zero", Vec3{}, Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if !got.Equals(tt.want, 1e-6) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVec3MinMaxLerp(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}

	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Min = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Max = %v, want %v", got, want)
	}
	if got, want := a.Lerp(b, 0.5), (Vec3{2, 2, -1}); got != want {
		t.Errorf("Lerp = %v, want %v", got, want)
	}
}

func TestRectSize(t *testing.T) {
	r := Rect{X0: 10, Y0: 20, X1: 650, Y1: 500}
	if r.Width() != 640 || r.Height() != 480 {
		t.Errorf("Rect size = %dx%d, want 640x480", r.Width(), r.Height())
	}
}
