// Package math provides the vector, plane, box, matrix and quaternion types
// shared by the mesh loaders and their consumers.
package math

import "github.com/chewxy/math32"

// RoundingError32 is the tolerance used by approximate float32 comparisons.
const RoundingError32 = 0.000001

// RoundingError64 is the tolerance for comparisons done in float64.
const RoundingError64 = 0.00000001

// DegToRad converts degrees to radians.
const DegToRad = math32.Pi / 180

// RadToDeg converts radians to degrees.
const RadToDeg = 180 / math32.Pi

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul returns the component-wise product.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSq returns the squared magnitude.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSq())
}

// Normalize returns a unit vector. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Lerp interpolates between v (t=0) and other (t=1).
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{
		v.X + t*(other.X-v.X),
		v.Y + t*(other.Y-v.Y),
		v.Z + t*(other.Z-v.Z),
	}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}

// Equals reports whether every component differs by at most eps.
func (v Vec3) Equals(other Vec3, eps float32) bool {
	return equals(v.X, other.X, eps) && equals(v.Y, other.Y, eps) && equals(v.Z, other.Z, eps)
}

// Array returns the components as an array.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Vec3FromArray builds a vector from an array.
func Vec3FromArray(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// XZ returns the XZ components as Vec2.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

func equals(a, b, eps float32) bool {
	return a+eps >= b && a-eps <= b
}

func isZero(a float32) bool {
	return math32.Abs(a) <= RoundingError32
}
