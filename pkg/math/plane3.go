package math

// PlaneRelation classifies a point against a plane.
type PlaneRelation int

const (
	PlanePlanar PlaneRelation = iota
	PlaneFront
	PlaneBack
)

// String returns a short name for the relation.
func (r PlaneRelation) String() string {
	switch r {
	case PlaneFront:
		return "front"
	case PlaneBack:
		return "back"
	default:
		return "planar"
	}
}

// Plane3 is the plane Normal·p + D = 0.
type Plane3 struct {
	Normal Vec3
	D      float32
}

// NewPlane3FromPointNormal builds the plane through point with the given normal.
func NewPlane3FromPointNormal(point, normal Vec3) Plane3 {
	return Plane3{Normal: normal, D: -point.Dot(normal)}
}

// NewPlane3FromPoints builds the plane through three points, with the
// normal following (b-a)×(c-a).
func NewPlane3FromPoints(a, b, c Vec3) Plane3 {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return NewPlane3FromPointNormal(a, n)
}

// MemberPoint returns a point lying on the plane.
func (p Plane3) MemberPoint() Vec3 {
	return p.Normal.Scale(-p.D)
}

// DistanceTo returns the signed distance of point from the plane. The
// normal is assumed to be unit length.
func (p Plane3) DistanceTo(point Vec3) float32 {
	return point.Dot(p.Normal) + p.D
}

// ClassifyPoint reports on which side of the plane point lies.
func (p Plane3) ClassifyPoint(point Vec3) PlaneRelation {
	d := p.DistanceTo(point)
	switch {
	case d < -RoundingError32:
		return PlaneBack
	case d > RoundingError32:
		return PlaneFront
	default:
		return PlanePlanar
	}
}

// Normalize rescales the plane so its normal has unit length.
func (p Plane3) Normalize() Plane3 {
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	return Plane3{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}
