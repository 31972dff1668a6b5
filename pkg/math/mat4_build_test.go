package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func projectDepth(m Mat4, p Vec3) float32 {
	v := m.TransformVect4(p)
	return v[2] / v[3]
}

func TestPerspectiveFov(t *testing.T) {
	fov := float32(math.Pi / 4)
	near, far := float32(0.5), float32(100)

	rh := PerspectiveFovRH(fov, 4.0/3.0, near, far)
	if rh.Index(11) != -1 || rh.Index(15) != 0 {
		t.Errorf("RH perspective w row = (%v, %v), want (-1, 0)", rh.Index(11), rh.Index(15))
	}
	assert.InDelta(t, 0, projectDepth(rh, Vec3{0, 0, -near}), 1e-5)
	assert.InDelta(t, 1, projectDepth(rh, Vec3{0, 0, -far}), 1e-5)

	lh := PerspectiveFovLH(fov, 4.0/3.0, near, far)
	if lh.Index(11) != 1 || lh.Index(15) != 0 {
		t.Errorf("LH perspective w row = (%v, %v), want (1, 0)", lh.Index(11), lh.Index(15))
	}
	assert.InDelta(t, 0, projectDepth(lh, Vec3{0, 0, near}), 1e-5)
	assert.InDelta(t, 1, projectDepth(lh, Vec3{0, 0, far}), 1e-5)

	h := 1 / math.Tan(math.Pi/8)
	assert.InDelta(t, h, rh.At(1, 1), 1e-5)
	assert.InDelta(t, h*3/4, rh.At(0, 0), 1e-5)
}

func TestPerspectiveVolume(t *testing.T) {
	rh := PerspectiveRH(2, 1, 1, 10)
	assert.Equal(t, float32(1), rh.At(0, 0))
	assert.Equal(t, float32(2), rh.At(1, 1))
	assert.InDelta(t, 1, projectDepth(rh, Vec3{0, 0, -10}), 1e-5)

	lh := PerspectiveLH(2, 1, 1, 10)
	assert.Equal(t, float32(1), lh.At(2, 3))
	assert.InDelta(t, 1, projectDepth(lh, Vec3{0, 0, 10}), 1e-5)
}

func TestOrtho(t *testing.T) {
	lh := OrthoLH(20, 10, 1, 11)
	assert.Equal(t, Vec3{-1, 1, 0}, lh.TransformVect(Vec3{-10, 5, 1}))
	assert.InDelta(t, 1, lh.TransformVect(Vec3{0, 0, 11}).Z, 1e-6)

	rh := OrthoRH(20, 10, 1, 11)
	assert.InDelta(t, 0, rh.TransformVect(Vec3{0, 0, -1}).Z, 1e-6)
	assert.InDelta(t, 1, rh.TransformVect(Vec3{0, 0, -11}).Z, 1e-6)
	assert.Equal(t, float32(1), rh.Index(15))
}

func TestLookAt(t *testing.T) {
	up := Vec3{0, 1, 0}

	rh := LookAtRH(Vec3{0, 0, 5}, Vec3{}, up)
	assert.True(t, rh.TransformVect(Vec3{0, 0, 5}).Equals(Vec3{}, 1e-6), "eye maps to origin")
	assert.True(t, rh.TransformVect(Vec3{}).Equals(Vec3{0, 0, -5}, 1e-6), "RH target lies on -Z")
	assert.Equal(t, float32(1), rh.Index(15))

	lh := LookAtLH(Vec3{0, 0, -5}, Vec3{}, up)
	assert.True(t, lh.TransformVect(Vec3{}).Equals(Vec3{0, 0, 5}, 1e-6), "LH target lies on +Z")

	// A view matrix is rigid.
	inv, ok := rh.Inverse()
	assert.True(t, ok)
	assert.True(t, rh.InversePrimitive().ApproxEquals(inv, 1e-5))
}

func TestShadowMatrix(t *testing.T) {
	light := Vec3{0, 10, 0}
	ground := NewPlane3FromPointNormal(Vec3{}, Vec3{0, 1, 0})
	m := ShadowMatrix(light, ground, 1)

	v := m.TransformVect4(Vec3{1, 1, 0})
	got := Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}

	// The ray from the light through (1,1,0) meets y=0 at x=10/9.
	want := Vec3{10.0 / 9.0, 0, 0}
	if !got.Equals(want, 1e-5) {
		t.Errorf("shadow of (1,1,0) = %v, want %v", got, want)
	}
}

func TestNDCToDC(t *testing.T) {
	m := NDCToDC(Rect{X0: 0, Y0: 0, X1: 640, Y1: 480}, 1)

	assert.Equal(t, float32(319.625), m.At(0, 0))
	assert.Equal(t, float32(-239.625), m.At(1, 1))
	assert.Equal(t, float32(1), m.At(2, 2))
	assert.Equal(t, Vec3{319.5, 239.5, 0}, m.Translation())

	center := m.TransformVect(Vec3{})
	assert.Equal(t, Vec3{319.5, 239.5, 0}, center)
}

func TestTextureTransform(t *testing.T) {
	m := TextureTransform(0, Vec2{}, Vec2{0.25, 0.5}, Vec2{2, 3})
	assert.Equal(t, float32(2), m.At(0, 0))
	assert.Equal(t, float32(3), m.At(1, 1))
	assert.Equal(t, float32(0.25), m.At(2, 0))
	assert.Equal(t, float32(0.5), m.At(2, 1))

	id := Identity()
	id.SetTextureScale(1, 1)
	id.SetTextureTranslate(0, 0)
	id.SetTextureRotationCenter(0)
	assert.True(t, id.identity, "neutral texture setters keep the identity flag")
	assert.True(t, id.IsIdentityExact())

	sc := Identity()
	sc.SetTextureScaleCenter(2, 2)
	assert.False(t, sc.identity)
	assert.Equal(t, float32(-0.5), sc.At(2, 0))

	rot := Identity()
	rot.SetTextureRotationCenter(float32(math.Pi / 2))
	// (0.5, 0.5) is the fixed point.
	u := 0.5*rot.At(0, 0) + 0.5*rot.At(1, 0) + rot.At(2, 0)
	v := 0.5*rot.At(0, 1) + 0.5*rot.At(1, 1) + rot.At(2, 1)
	assert.InDelta(t, 0.5, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)
}
