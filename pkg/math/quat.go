package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	half := angle / 2
	s, c := math32.Sin(half), math32.Cos(half)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuatFromEuler returns the rotation about X, then Y, then Z by the given
// radians. It matches Mat4.SetRotationRadians.
func QuatFromEuler(r Vec3) Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, r.X)
	qy := QuatFromAxisAngle(Vec3{Y: 1}, r.Y)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, r.Z)
	return qz.Mul(qy).Mul(qx)
}

// QuatFromMat4 extracts the rotation of the upper 3x3 block of m, which
// must be orthonormal. It is the inverse of ToMat4.
func QuatFromMat4(m Mat4) Quat {
	e := &m.m
	var q Quat
	trace := e[0] + e[5] + e[10]
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2 // 4w
		q.W = s / 4
		q.X = (e[6] - e[9]) / s
		q.Y = (e[8] - e[2]) / s
		q.Z = (e[1] - e[4]) / s
	case e[0] > e[5] && e[0] > e[10]:
		s := math32.Sqrt(1+e[0]-e[5]-e[10]) * 2 // 4x
		q.W = (e[6] - e[9]) / s
		q.X = s / 4
		q.Y = (e[1] + e[4]) / s
		q.Z = (e[8] + e[2]) / s
	case e[5] > e[10]:
		s := math32.Sqrt(1+e[5]-e[0]-e[10]) * 2 // 4y
		q.W = (e[8] - e[2]) / s
		q.X = (e[1] + e[4]) / s
		q.Y = s / 4
		q.Z = (e[6] + e[9]) / s
	default:
		s := math32.Sqrt(1+e[10]-e[0]-e[5]) * 2 // 4z
		q.W = (e[1] - e[4]) / s
		q.X = (e[8] + e[2]) / s
		q.Y = (e[6] + e[9]) / s
		q.Z = s / 4
	}
	return q.Normalize()
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Equals reports whether q and other describe the same rotation within
// eps. q and -q are treated as equal.
func (q Quat) Equals(other Quat, eps float32) bool {
	return equals(math32.Abs(q.Normalize().Dot(other.Normalize())), 1, eps)
}

// Slerp interpolates along the shorter arc from q (t=0) to other (t=1).
func (q Quat) Slerp(other Quat, t float32) Quat {
	cos := q.Dot(other)
	if cos < 0 {
		other, cos = other.scale(-1), -cos
	}
	if cos > 0.9995 {
		return q.Lerp(other, t)
	}

	theta := math32.Acos(cos)
	sin := math32.Sin(theta)
	return q.scale(math32.Sin((1-t)*theta) / sin).add(other.scale(math32.Sin(t*theta) / sin))
}

// ToMat4 converts the quaternion to a rotation matrix. Row i is the
// image of the i-th basis vector.
func (q Quat) ToMat4() Mat4 {
	x, y, z := q.Rotate(Vec3{X: 1}), q.Rotate(Vec3{Y: 1}), q.Rotate(Vec3{Z: 1})
	return Mat4FromArray([16]float32{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	})
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	q = q.Normalize()
	u := q.vec()
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Lerp performs linear interpolation between two quaternions.
// Use Slerp for rotation interpolation; this is for simple blending.
func (q Quat) Lerp(other Quat, t float32) Quat {
	return q.scale(1 - t).add(other.scale(t)).Normalize()
}

// Mul multiplies two quaternions. The result applies other first, then q.
func (q Quat) Mul(other Quat) Quat {
	u, v := q.vec(), other.vec()
	xyz := v.Scale(q.W).Add(u.Scale(other.W)).Add(u.Cross(v))
	return Quat{X: xyz.X, Y: xyz.Y, Z: xyz.Z, W: q.W*other.W - u.Dot(v)}
}

func (q Quat) vec() Vec3 { return Vec3{q.X, q.Y, q.Z} }

func (q Quat) scale(s float32) Quat {
	return Quat{X: q.X * s, Y: q.Y * s, Z: q.Z * s, W: q.W * s}
}

func (q Quat) add(o Quat) Quat {
	return Quat{X: q.X + o.X, Y: q.Y + o.Y, Z: q.Z + o.Z, W: q.W + o.W}
}
