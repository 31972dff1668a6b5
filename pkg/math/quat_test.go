package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if m := q.ToMat4(); !m.IsIdentity() {
		t.Errorf("Identity quat should produce identity matrix, got %v", m.Array())
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.Dot(n))))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	if got := q1.Slerp(q2, 0); !got.Equals(q1, 1e-5) {
		t.Errorf("Slerp at t=0 = %v, want %v", got, q1)
	}
	if got := q1.Slerp(q2, 1); !got.Equals(q2, 1e-5) {
		t.Errorf("Slerp at t=1 = %v, want %v", got, q2)
	}

	// Halfway through a 90 degree turn is 45 degrees.
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(result5.W-expectedW)) > 0.001 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatSlerpShortestPath(t *testing.T) {
	q1 := QuatFromAxisAngle(Vec3{Z: 1}, 0.1)
	q2 := QuatFromAxisAngle(Vec3{Z: 1}, 0.3)
	neg := Quat{X: -q2.X, Y: -q2.Y, Z: -q2.Z, W: -q2.W}

	a := q1.Slerp(q2, 0.5)
	b := q1.Slerp(neg, 0.5)
	assert.True(t, a.Equals(b, 1e-5), "q and -q should interpolate identically")
	assert.True(t, a.Equals(QuatFromAxisAngle(Vec3{Z: 1}, 0.2), 1e-5))
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatToMat4MatchesMathgl(t *testing.T) {
	axis := Vec3{1, 2, 3}.Normalize()
	angle := float32(1.2)

	got := QuatFromAxisAngle(axis, angle).ToMat4()
	want := mgl32.QuatRotate(angle, mgl32.Vec3{axis.X, axis.Y, axis.Z}).Mat4()

	if !got.ApproxEquals(Mat4FromArray(want), 1e-5) {
		t.Errorf("ToMat4 = %v, want %v", got.Array(), want)
	}
	assert.True(t, got.ApproxEquals(RotateAxis(axis, angle), 1e-5))
}

func TestQuatFromMat4RoundTrip(t *testing.T) {
	// Cover every branch of the extraction: trace > 0 and each
	// dominant diagonal element.
	tests := []struct {
		name string
		q    Quat
	}{
		{"small angle", QuatFromAxisAngle(Vec3{1, 1, 0}.Normalize(), 0.4)},
		{"x dominant", QuatFromAxisAngle(Vec3{X: 1}, 3)},
		{"y dominant", QuatFromAxisAngle(Vec3{Y: 1}, 3)},
		{"z dominant", QuatFromAxisAngle(Vec3{Z: 1}, 3)},
		{"half turn", QuatFromAxisAngle(Vec3{0, 1, 1}.Normalize(), float32(math.Pi))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.q.ToMat4()
			got := QuatFromMat4(m)
			if !got.Equals(tt.q, 1e-5) {
				t.Errorf("QuatFromMat4(ToMat4(%v)) = %v", tt.q, got)
			}
			if !got.ToMat4().ApproxEquals(m, 1e-5) {
				t.Errorf("matrix round trip drifted: %v vs %v", got.ToMat4().Array(), m.Array())
			}
		})
	}
}

func TestQuatFromMat4IgnoresTranslation(t *testing.T) {
	m := RotationRadians(Vec3{0.2, 0.4, 0.6})
	q := QuatFromMat4(m)
	m.SetTranslation(Vec3{5, 6, 7})
	assert.True(t, QuatFromMat4(m).Equals(q, 1e-6))
}

func TestQuatFromEulerMatchesMatrix(t *testing.T) {
	r := Vec3{0.3, -0.5, 1.2}
	fromEuler := QuatFromEuler(r)
	fromMatrix := QuatFromMat4(RotationRadians(r))

	if !fromEuler.Equals(fromMatrix, 1e-5) {
		t.Errorf("QuatFromEuler = %v, QuatFromMat4 = %v", fromEuler, fromMatrix)
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{X: 1}, 0.7)
	b := QuatFromAxisAngle(Vec3{Y: 1}, -0.4)

	got := a.Mul(b).ToMat4()
	want := a.ToMat4().Mul(b.ToMat4())
	assert.True(t, got.ApproxEquals(want, 1e-5))

	v := Vec3{1, 2, 3}
	assert.True(t, a.Mul(b).Rotate(v).Equals(a.Rotate(b.Rotate(v)), 1e-5))
}

func TestQuatLerp(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromAxisAngle(Vec3{Z: 1}, 0.2)
	got := a.Lerp(b, 0.5)

	l := got.Dot(got)
	assert.InDelta(t, 1, l, 1e-5)
	assert.True(t, got.Equals(a.Slerp(b, 0.5), 1e-4))
}

func toMgl(q Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func fromMgl(q mgl32.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

func TestQuatMatchesMathgl(t *testing.T) {
	a := QuatFromEuler(Vec3{0.3, -0.8, 1.1})
	b := QuatFromEuler(Vec3{-0.5, 0.2, 0.4})
	if a.Dot(b) < 0 {
		b = b.scale(-1)
	}

	tests := []float32{0, 0.25, 0.5, 0.9, 1}
	for _, tt := range tests {
		got := a.Slerp(b, tt)
		want := fromMgl(mgl32.QuatSlerp(toMgl(a), toMgl(b), tt))
		assert.True(t, got.Equals(want, 1e-5), "Slerp(%v) = %v, want %v", tt, got, want)
	}

	got := a.Mul(b)
	want := fromMgl(toMgl(a).Mul(toMgl(b)))
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
	assert.InDelta(t, want.Z, got.Z, 1e-6)
	assert.InDelta(t, want.W, got.W, 1e-6)

	v := Vec3{1, -2, 0.5}
	r := toMgl(a).Rotate(mgl32.Vec3{v.X, v.Y, v.Z})
	assert.True(t, a.Rotate(v).Equals(Vec3{r[0], r[1], r[2]}, 1e-5))
}
