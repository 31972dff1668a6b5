package math

// AABox3 is an axis-aligned box. Min <= Max holds component-wise unless
// the box was built from raw corners; Repair restores it.
type AABox3 struct {
	Min, Max Vec3
}

// NewAABox3 returns the box spanning the two corners, repaired.
func NewAABox3(a, b Vec3) AABox3 {
	box := AABox3{Min: a, Max: b}
	box.Repair()
	return box
}

// Reset collapses the box onto point.
func (b *AABox3) Reset(point Vec3) {
	b.Min = point
	b.Max = point
}

// AddPoint grows the box to contain point.
func (b *AABox3) AddPoint(point Vec3) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// AddBox grows the box to contain other.
func (b *AABox3) AddBox(other AABox3) {
	b.AddPoint(other.Min)
	b.AddPoint(other.Max)
}

// Repair swaps any inverted components so that Min <= Max.
func (b *AABox3) Repair() {
	if b.Min.X > b.Max.X {
		b.Min.X, b.Max.X = b.Max.X, b.Min.X
	}
	if b.Min.Y > b.Max.Y {
		b.Min.Y, b.Max.Y = b.Max.Y, b.Min.Y
	}
	if b.Min.Z > b.Max.Z {
		b.Min.Z, b.Max.Z = b.Max.Z, b.Min.Z
	}
}

// Center returns the midpoint of the box.
func (b AABox3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns Max - Min.
func (b AABox3) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// IsEmpty reports whether the box has zero extent on every axis.
func (b AABox3) IsEmpty() bool {
	return b.Min == b.Max
}

// IsPointInside reports whether point lies inside or on the box.
func (b AABox3) IsPointInside(point Vec3) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Y >= b.Min.Y && point.Y <= b.Max.Y &&
		point.Z >= b.Min.Z && point.Z <= b.Max.Z
}

// Intersects reports whether the two boxes overlap.
func (b AABox3) Intersects(other AABox3) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Corners returns the eight corners of the box.
func (b AABox3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}
