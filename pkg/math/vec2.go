package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// Rect is an integer screen rectangle given by its upper-left and
// lower-right corners.
type Rect struct {
	X0, Y0 int32 // upper left
	X1, Y1 int32 // lower right
}

// Width returns X1 - X0.
func (r Rect) Width() int32 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() int32 { return r.Y1 - r.Y0 }
