package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlane3FromPoints(t *testing.T) {
	p := NewPlane3FromPoints(Vec3{0, 2, 0}, Vec3{0, 2, 1}, Vec3{1, 2, 0})

	assert.True(t, p.Normal.Equals(Vec3{0, 1, 0}, 1e-6), "normal = %v", p.Normal)
	assert.InDelta(t, -2, p.D, 1e-6)
	assert.True(t, p.MemberPoint().Equals(Vec3{0, 2, 0}, 1e-6))
}

func TestPlane3Classify(t *testing.T) {
	p := NewPlane3FromPointNormal(Vec3{0, 1, 0}, Vec3{0, 1, 0})

	tests := []struct {
		point Vec3
		want  PlaneRelation
	}{
		{Vec3{5, 3, -2}, PlaneFront},
		{Vec3{0, -1, 0}, PlaneBack},
		{Vec3{7, 1, 7}, PlanePlanar},
	}
	for _, tt := range tests {
		if got := p.ClassifyPoint(tt.point); got != tt.want {
			t.Errorf("ClassifyPoint(%v) = %v, want %v", tt.point, got, tt.want)
		}
	}
	assert.InDelta(t, 2, p.DistanceTo(Vec3{0, 3, 0}), 1e-6)
}

func TestPlane3Normalize(t *testing.T) {
	p := Plane3{Normal: Vec3{0, 0, 2}, D: -4}.Normalize()
	assert.Equal(t, Vec3{0, 0, 1}, p.Normal)
	assert.Equal(t, float32(-2), p.D)
}

func TestAABox3Repair(t *testing.T) {
	b := AABox3{Min: Vec3{1, -1, 3}, Max: Vec3{-1, 1, 2}}
	b.Repair()

	assert.Equal(t, Vec3{-1, -1, 2}, b.Min)
	assert.Equal(t, Vec3{1, 1, 3}, b.Max)
}

func TestAABox3Grow(t *testing.T) {
	var b AABox3
	b.Reset(Vec3{1, 1, 1})
	assert.True(t, b.IsEmpty())

	b.AddPoint(Vec3{-2, 4, 0})
	b.AddBox(AABox3{Min: Vec3{0, 0, 5}, Max: Vec3{0, 0, 6}})

	assert.Equal(t, Vec3{-2, 0, 0}, b.Min)
	assert.Equal(t, Vec3{1, 4, 6}, b.Max)
	assert.Equal(t, Vec3{3, 4, 6}, b.Extent())
	assert.Equal(t, Vec3{-0.5, 2, 3}, b.Center())
	assert.True(t, b.IsPointInside(Vec3{0, 1, 1}))
	assert.False(t, b.IsPointInside(Vec3{0, 5, 1}))
}

func TestAABox3Intersects(t *testing.T) {
	a := NewAABox3(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	assert.True(t, a.Intersects(NewAABox3(Vec3{1, 1, 1}, Vec3{2, 2, 2})), "touching boxes intersect")
	assert.False(t, a.Intersects(NewAABox3(Vec3{1.5, 0, 0}, Vec3{2, 1, 1})))
}

func TestAABox3Corners(t *testing.T) {
	b := NewAABox3(Vec3{-1, -2, -3}, Vec3{1, 2, 3})
	var rebuilt AABox3
	rebuilt.Reset(b.Corners()[0])
	for _, c := range b.Corners() {
		rebuilt.AddPoint(c)
	}
	assert.Equal(t, b, rebuilt)
}
