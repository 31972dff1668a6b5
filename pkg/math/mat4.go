package math

import "math"

// Mat4 is a 4x4 transform stored as 16 float32 elements.
//
// Element (row, col) lives at index row*4+col. The translation occupies
// elements 12, 13 and 14 and vectors are transformed as rows, so
// a.Mul(b) yields the transform that applies b first and then a. This is
// the same flat layout and product that OpenGL and mathgl use.
//
// The zero value is the zero matrix. Each Mat4 carries an identity flag
// that is true only when the matrix is known to be exactly the identity.
// Every mutating method clears it; Identity, MakeIdentity and a passing
// IsIdentity / IsIdentityExact set it.
type Mat4 struct {
	m        [16]float32
	identity bool
}

// ConstructMode selects how NewMat4 derives a matrix from its source.
type ConstructMode int

const (
	ConstructNothing ConstructMode = iota
	ConstructCopy
	ConstructIdentity
	ConstructTransposed
	ConstructInverse
	ConstructInverseTransposed
)

// String returns the mode name.
func (c ConstructMode) String() string {
	switch c {
	case ConstructNothing:
		return "nothing"
	case ConstructCopy:
		return "copy"
	case ConstructIdentity:
		return "identity"
	case ConstructTransposed:
		return "transposed"
	case ConstructInverse:
		return "inverse"
	case ConstructInverseTransposed:
		return "inverse-transposed"
	default:
		return "unknown"
	}
}

var identityElements = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{m: identityElements, identity: true}
}

// NewMat4 derives a matrix from src according to mode. ConstructNothing
// yields the zero matrix. The inverse modes yield the zero matrix when src
// is singular.
func NewMat4(mode ConstructMode, src Mat4) Mat4 {
	switch mode {
	case ConstructCopy:
		return src
	case ConstructIdentity:
		return Identity()
	case ConstructTransposed:
		return src.Transposed()
	case ConstructInverse:
		inv, _ := src.Inverse()
		return inv
	case ConstructInverseTransposed:
		inv, ok := src.Inverse()
		if !ok {
			return Mat4{}
		}
		return inv.Transposed()
	default:
		return Mat4{}
	}
}

// Mat4FromArray builds a matrix from 16 elements in storage order.
func Mat4FromArray(a [16]float32) Mat4 {
	return Mat4{m: a}
}

// Array returns a copy of the elements in storage order.
func (m Mat4) Array() [16]float32 {
	return m.m
}

// At returns the element at (row, col).
func (m Mat4) At(row, col int) float32 {
	return m.m[row*4+col]
}

// Set stores v at (row, col).
func (m *Mat4) Set(row, col int, v float32) {
	m.identity = false
	m.m[row*4+col] = v
}

// Index returns the element at linear index i.
func (m Mat4) Index(i int) float32 {
	return m.m[i]
}

// SetIndex stores v at linear index i.
func (m *Mat4) SetIndex(i int, v float32) {
	m.identity = false
	m.m[i] = v
}

// SetArray replaces all 16 elements.
func (m *Mat4) SetArray(a [16]float32) {
	m.identity = false
	m.m = a
}

// Ptr returns a pointer to the first element (for uploading to graphics
// APIs). The matrix may be written through it, so the identity flag is
// cleared.
func (m *Mat4) Ptr() *float32 {
	m.identity = false
	return &m.m[0]
}

// MakeIdentity resets m to the identity matrix.
func (m *Mat4) MakeIdentity() {
	m.m = identityElements
	m.identity = true
}

// IsIdentity reports whether m is the identity within RoundingError32.
// A positive answer is cached on m.
func (m *Mat4) IsIdentity() bool {
	if m.identity {
		return true
	}
	if !equals(m.m[0], 1, RoundingError32) ||
		!equals(m.m[5], 1, RoundingError32) ||
		!equals(m.m[10], 1, RoundingError32) ||
		!equals(m.m[15], 1, RoundingError32) {
		return false
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if row != col && !isZero(m.m[row*4+col]) {
				return false
			}
		}
	}
	m.identity = true
	return true
}

const f32One = 0x3f800000

// IsIdentityExact reports whether every element has exactly the bit
// pattern of the identity matrix. Negative zero fails the test.
// A positive answer is cached on m.
func (m *Mat4) IsIdentityExact() bool {
	if m.identity {
		return true
	}
	for i, v := range m.m {
		want := uint32(0)
		if i%5 == 0 {
			want = f32One
		}
		if math.Float32bits(v) != want {
			return false
		}
	}
	m.identity = true
	return true
}

// Equals reports whether every element of m equals the matching element
// of other.
func (m Mat4) Equals(other Mat4) bool {
	if m.identity && other.identity {
		return true
	}
	return m.m == other.m
}

// ApproxEquals reports whether every element differs by at most eps.
func (m Mat4) ApproxEquals(other Mat4, eps float32) bool {
	for i := range m.m {
		if !equals(m.m[i], other.m[i], eps) {
			return false
		}
	}
	return true
}

// Add returns the element-wise sum.
func (m Mat4) Add(other Mat4) Mat4 {
	var r Mat4
	for i := range r.m {
		r.m[i] = m.m[i] + other.m[i]
	}
	return r
}

// Sub returns the element-wise difference.
func (m Mat4) Sub(other Mat4) Mat4 {
	var r Mat4
	for i := range r.m {
		r.m[i] = m.m[i] - other.m[i]
	}
	return r
}

// MulScalar returns every element multiplied by s.
func (m Mat4) MulScalar(s float32) Mat4 {
	var r Mat4
	for i := range r.m {
		r.m[i] = m.m[i] * s
	}
	return r
}

// Mul returns m * other. When either operand is the identity the other
// operand is returned unchanged and no product is computed.
func (m Mat4) Mul(other Mat4) Mat4 {
	if m.IsIdentity() {
		return other
	}
	if other.IsIdentity() {
		return m
	}
	return m.MulNoCheck(other)
}

// MulNoCheck returns m * other without the identity shortcut. Row i of
// the result is row i of other carried through m.
func (m Mat4) MulNoCheck(other Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 16; i += 4 {
		row := other.m[i : i+4]
		for j := 0; j < 4; j++ {
			r.m[i+j] = row[0]*m.m[j] + row[1]*m.m[4+j] + row[2]*m.m[8+j] + row[3]*m.m[12+j]
		}
	}
	return r
}

// Interpolate blends element-wise between m (t=0) and other (t=1).
func (m Mat4) Interpolate(other Mat4, t float32) Mat4 {
	var r Mat4
	for i := range r.m {
		r.m[i] = m.m[i] + (other.m[i]-m.m[i])*t
	}
	return r
}

// Transposed returns m with rows and columns swapped.
func (m Mat4) Transposed() Mat4 {
	r := Mat4{identity: m.identity}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r.m[col*4+row] = m.m[row*4+col]
		}
	}
	return r
}

// Inverse returns the inverse of m computed with Cramer's rule. It
// reports false and returns the zero matrix when the determinant is
// within RoundingError32 of zero.
func (m Mat4) Inverse() (Mat4, bool) {
	if m.IsIdentity() {
		return m, true
	}

	e := &m.m
	m00, m01, m02, m03 := e[0], e[1], e[2], e[3]
	m10, m11, m12, m13 := e[4], e[5], e[6], e[7]
	m20, m21, m22, m23 := e[8], e[9], e[10], e[11]
	m30, m31, m32, m33 := e[12], e[13], e[14], e[15]

	d := (m00*m11-m01*m10)*(m22*m33-m23*m32) -
		(m00*m12-m02*m10)*(m21*m33-m23*m31) +
		(m00*m13-m03*m10)*(m21*m32-m22*m31) +
		(m01*m12-m02*m11)*(m20*m33-m23*m30) -
		(m01*m13-m03*m11)*(m20*m32-m22*m30) +
		(m02*m13-m03*m12)*(m20*m31-m21*m30)

	if isZero(d) {
		return Mat4{}, false
	}
	d = 1 / d

	var r Mat4
	o := &r.m
	o[0] = d * (m11*(m22*m33-m23*m32) + m12*(m23*m31-m21*m33) + m13*(m21*m32-m22*m31))
	o[1] = d * (m21*(m02*m33-m03*m32) + m22*(m03*m31-m01*m33) + m23*(m01*m32-m02*m31))
	o[2] = d * (m31*(m02*m13-m03*m12) + m32*(m03*m11-m01*m13) + m33*(m01*m12-m02*m11))
	o[3] = d * (m01*(m13*m22-m12*m23) + m02*(m11*m23-m13*m21) + m03*(m12*m21-m11*m22))
	o[4] = d * (m12*(m20*m33-m23*m30) + m13*(m22*m30-m20*m32) + m10*(m23*m32-m22*m33))
	o[5] = d * (m22*(m00*m33-m03*m30) + m23*(m02*m30-m00*m32) + m20*(m03*m32-m02*m33))
	o[6] = d * (m32*(m00*m13-m03*m10) + m33*(m02*m10-m00*m12) + m30*(m03*m12-m02*m13))
	o[7] = d * (m02*(m13*m20-m10*m23) + m03*(m10*m22-m12*m20) + m00*(m12*m23-m13*m22))
	o[8] = d * (m13*(m20*m31-m21*m30) + m10*(m21*m33-m23*m31) + m11*(m23*m30-m20*m33))
	o[9] = d * (m23*(m00*m31-m01*m30) + m20*(m01*m33-m03*m31) + m21*(m03*m30-m00*m33))
	o[10] = d * (m33*(m00*m11-m01*m10) + m30*(m01*m13-m03*m11) + m31*(m03*m10-m00*m13))
	o[11] = d * (m03*(m11*m20-m10*m21) + m00*(m13*m21-m11*m23) + m01*(m10*m23-m13*m20))
	o[12] = d * (m10*(m22*m31-m21*m32) + m11*(m20*m32-m22*m30) + m12*(m21*m30-m20*m31))
	o[13] = d * (m20*(m02*m31-m01*m32) + m21*(m00*m32-m02*m30) + m22*(m01*m30-m00*m31))
	o[14] = d * (m30*(m02*m11-m01*m12) + m31*(m00*m12-m02*m10) + m32*(m01*m10-m00*m11))
	o[15] = d * (m00*(m11*m22-m12*m21) + m01*(m12*m20-m10*m22) + m02*(m10*m21-m11*m20))
	return r, true
}

// MakeInverse replaces m with its inverse. On failure m becomes the zero
// matrix and false is returned.
func (m *Mat4) MakeInverse() bool {
	if m.identity {
		return true
	}
	inv, ok := m.Inverse()
	*m = inv
	return ok
}

// InversePrimitive inverts a rigid transform (rotation plus translation)
// by transposing the rotation block and counter-rotating the translation.
// The result is wrong for matrices with scale or shear.
func (m Mat4) InversePrimitive() Mat4 {
	e := &m.m
	return Mat4{
		m: [16]float32{
			e[0], e[4], e[8], 0,
			e[1], e[5], e[9], 0,
			e[2], e[6], e[10], 0,
			-(e[12]*e[0] + e[13]*e[1] + e[14]*e[2]),
			-(e[12]*e[4] + e[13]*e[5] + e[14]*e[6]),
			-(e[12]*e[8] + e[13]*e[9] + e[14]*e[10]),
			1,
		},
		identity: m.identity,
	}
}

// Vec4 is a 4-component vector.
type Vec4 [4]float32

// MulVec4 returns the 1x4 product v·m.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	e := &m.m
	return Vec4{
		e[0]*v[0] + e[4]*v[1] + e[8]*v[2] + e[12]*v[3],
		e[1]*v[0] + e[5]*v[1] + e[9]*v[2] + e[13]*v[3],
		e[2]*v[0] + e[6]*v[1] + e[10]*v[2] + e[14]*v[3],
		e[3]*v[0] + e[7]*v[1] + e[11]*v[2] + e[15]*v[3],
	}
}
