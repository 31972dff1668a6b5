package math

import (
	"math"

	"github.com/chewxy/math32"
)

// Translation returns the translation part of m.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.m[12], m.m[13], m.m[14]}
}

// SetTranslation overwrites the translation part of m.
func (m *Mat4) SetTranslation(t Vec3) {
	m.m[12], m.m[13], m.m[14] = t.X, t.Y, t.Z
	m.identity = false
}

// SetInverseTranslation overwrites the translation part of m with -t.
func (m *Mat4) SetInverseTranslation(t Vec3) {
	m.m[12], m.m[13], m.m[14] = -t.X, -t.Y, -t.Z
	m.identity = false
}

// ScaleFactors returns the diagonal scale of m. It is only meaningful for
// matrices without rotation.
func (m Mat4) ScaleFactors() Vec3 {
	return Vec3{m.m[0], m.m[5], m.m[10]}
}

// SetScale overwrites the diagonal of the upper 3x3 block.
func (m *Mat4) SetScale(s Vec3) {
	m.m[0], m.m[5], m.m[10] = s.X, s.Y, s.Z
	m.identity = false
}

// SetRotationRadians overwrites the upper 3x3 block with the rotation
// about X, then Y, then Z by the given angles. Translation and the last
// column are left untouched.
func (m *Mat4) SetRotationRadians(r Vec3) {
	cr, sr := math32.Cos(r.X), math32.Sin(r.X)
	cp, sp := math32.Cos(r.Y), math32.Sin(r.Y)
	cy, sy := math32.Cos(r.Z), math32.Sin(r.Z)

	m.m[0] = cp * cy
	m.m[1] = cp * sy
	m.m[2] = -sp

	srsp := sr * sp
	crsp := cr * sp

	m.m[4] = srsp*cy - cr*sy
	m.m[5] = srsp*sy + cr*cy
	m.m[6] = sr * cp

	m.m[8] = crsp*cy + sr*sy
	m.m[9] = crsp*sy - sr*cy
	m.m[10] = cr * cp
	m.identity = false
}

// SetRotationDegrees is SetRotationRadians with angles in degrees.
func (m *Mat4) SetRotationDegrees(r Vec3) {
	m.SetRotationRadians(r.Scale(DegToRad))
}

// SetInverseRotationRadians writes the transpose of the rotation built by
// SetRotationRadians.
func (m *Mat4) SetInverseRotationRadians(r Vec3) {
	cr, sr := math32.Cos(r.X), math32.Sin(r.X)
	cp, sp := math32.Cos(r.Y), math32.Sin(r.Y)
	cy, sy := math32.Cos(r.Z), math32.Sin(r.Z)

	m.m[0] = cp * cy
	m.m[4] = cp * sy
	m.m[8] = -sp

	srsp := sr * sp
	crsp := cr * sp

	m.m[1] = srsp*cy - cr*sy
	m.m[5] = srsp*sy + cr*cy
	m.m[9] = sr * cp

	m.m[2] = crsp*cy + sr*sy
	m.m[6] = crsp*sy - sr*cy
	m.m[10] = cr * cp
	m.identity = false
}

// SetInverseRotationDegrees is SetInverseRotationRadians in degrees.
func (m *Mat4) SetInverseRotationDegrees(r Vec3) {
	m.SetInverseRotationRadians(r.Scale(DegToRad))
}

// RotationDegrees decomposes the upper 3x3 block into X, Y and Z angles
// in degrees, each in [0, 360). Near gimbal lock X is fixed to 0.
func (m Mat4) RotationDegrees() Vec3 {
	y := -math.Asin(clamp64(float64(m.At(0, 2)), -1, 1))
	c := math.Cos(y)
	y *= 180 / math.Pi

	var x, z float64
	if math.Abs(c) > RoundingError64 {
		x = math.Atan2(float64(m.At(1, 2))/c, float64(m.At(2, 2))/c) * 180 / math.Pi
		z = math.Atan2(float64(m.At(0, 1))/c, float64(m.At(0, 0))/c) * 180 / math.Pi
	} else {
		z = math.Atan2(-float64(m.At(1, 0)), float64(m.At(1, 1))) * 180 / math.Pi
	}

	if x < 0 {
		x += 360
	}
	if y < 0 {
		y += 360
	}
	if z < 0 {
		z += 360
	}
	return Vec3{float32(x), float32(y), float32(z)}
}

func clamp64(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RotateVect applies only the upper 3x3 block to v.
func (m Mat4) RotateVect(v Vec3) Vec3 {
	e := &m.m
	return Vec3{
		v.X*e[0] + v.Y*e[4] + v.Z*e[8],
		v.X*e[1] + v.Y*e[5] + v.Z*e[9],
		v.X*e[2] + v.Y*e[6] + v.Z*e[10],
	}
}

// RotateVectInPlace is RotateVect writing back into v.
func (m Mat4) RotateVectInPlace(v *Vec3) {
	*v = m.RotateVect(*v)
}

// InverseRotateVect applies the transpose of the upper 3x3 block to v.
// It inverts RotateVect for pure rotations.
func (m Mat4) InverseRotateVect(v Vec3) Vec3 {
	e := &m.m
	return Vec3{
		v.X*e[0] + v.Y*e[1] + v.Z*e[2],
		v.X*e[4] + v.Y*e[5] + v.Z*e[6],
		v.X*e[8] + v.Y*e[9] + v.Z*e[10],
	}
}

// InverseRotateVectInPlace is InverseRotateVect writing back into v.
func (m Mat4) InverseRotateVectInPlace(v *Vec3) {
	*v = m.InverseRotateVect(*v)
}

// TranslateVect adds the translation of m to v.
func (m Mat4) TranslateVect(v Vec3) Vec3 {
	return Vec3{v.X + m.m[12], v.Y + m.m[13], v.Z + m.m[14]}
}

// TranslateVectInPlace is TranslateVect writing back into v.
func (m Mat4) TranslateVectInPlace(v *Vec3) {
	*v = m.TranslateVect(*v)
}

// InverseTranslateVect subtracts the translation of m from v.
func (m Mat4) InverseTranslateVect(v Vec3) Vec3 {
	return Vec3{v.X - m.m[12], v.Y - m.m[13], v.Z - m.m[14]}
}

// InverseTranslateVectInPlace is InverseTranslateVect writing back into v.
func (m Mat4) InverseTranslateVectInPlace(v *Vec3) {
	*v = m.InverseTranslateVect(*v)
}

// TransformVect applies the upper 3x3 block and the translation to v.
// The projective row is ignored.
func (m Mat4) TransformVect(v Vec3) Vec3 {
	e := &m.m
	return Vec3{
		v.X*e[0] + v.Y*e[4] + v.Z*e[8] + e[12],
		v.X*e[1] + v.Y*e[5] + v.Z*e[9] + e[13],
		v.X*e[2] + v.Y*e[6] + v.Z*e[10] + e[14],
	}
}

// TransformVectInPlace is TransformVect writing back into v.
func (m Mat4) TransformVectInPlace(v *Vec3) {
	*v = m.TransformVect(*v)
}

// TransformVect4 transforms the point v (w = 1) and returns all four
// homogeneous components.
func (m Mat4) TransformVect4(v Vec3) Vec4 {
	return m.MulVec4(Vec4{v.X, v.Y, v.Z, 1})
}

// TransformPlane transforms p by m. The distance is recomputed from a
// transformed member point so the result stays on the transformed
// geometry under non-uniform scale.
func (m Mat4) TransformPlane(p Plane3) Plane3 {
	member := m.TransformVect(p.MemberPoint())
	origin := m.TransformVect(Vec3{})
	normal := m.TransformVect(p.Normal).Sub(origin)
	return Plane3{Normal: normal, D: -member.Dot(normal)}
}

// TransformPlaneInPlace is TransformPlane writing back into p.
func (m Mat4) TransformPlaneInPlace(p *Plane3) {
	*p = m.TransformPlane(*p)
}

// TransformBox transforms only the two corners of box and repairs the
// result. Under rotation the result is not tight; see TransformBoxEx.
func (m Mat4) TransformBox(box AABox3) AABox3 {
	if m.IsIdentity() {
		return box
	}
	out := AABox3{Min: m.TransformVect(box.Min), Max: m.TransformVect(box.Max)}
	out.Repair()
	return out
}

// TransformBoxInPlace is TransformBox writing back into box.
func (m Mat4) TransformBoxInPlace(box *AABox3) {
	*box = m.TransformBox(*box)
}

// TransformBoxEx returns the tightest axis-aligned box containing the
// transformed box, using per-axis interval arithmetic.
func (m Mat4) TransformBoxEx(box AABox3) AABox3 {
	amin := box.Min.Array()
	amax := box.Max.Array()
	bmin := [3]float32{m.m[12], m.m[13], m.m[14]}
	bmax := bmin

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			k := m.At(j, i)
			a := k * amin[j]
			b := k * amax[j]
			if a < b {
				bmin[i] += a
				bmax[i] += b
			} else {
				bmin[i] += b
				bmax[i] += a
			}
		}
	}
	return AABox3{Min: Vec3FromArray(bmin), Max: Vec3FromArray(bmax)}
}

// TransformBoxExInPlace is TransformBoxEx writing back into box.
func (m Mat4) TransformBoxExInPlace(box *AABox3) {
	*box = m.TransformBoxEx(*box)
}
