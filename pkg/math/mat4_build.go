package math

import "github.com/chewxy/math32"

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m.SetTranslation(Vec3{x, y, z})
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m.SetScale(Vec3{x, y, z})
	return m
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians.
func RotateX(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4FromArray([16]float32{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	})
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4FromArray([16]float32{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4FromArray([16]float32{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// RotateAxis creates a rotation matrix around an arbitrary axis.
// axis should be normalized, angle is in radians.
func RotateAxis(axis Vec3, angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4FromArray([16]float32{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	})
}

// RotationRadians returns the matrix built by SetRotationRadians on an
// identity matrix.
func RotationRadians(r Vec3) Mat4 {
	m := Identity()
	m.SetRotationRadians(r)
	return m
}

// PerspectiveFovRH returns a right-handed perspective projection with
// depth mapped to [0, 1]. fovY is in radians, aspect is width/height.
func PerspectiveFovRH(fovY, aspect, zNear, zFar float32) Mat4 {
	h := 1 / math32.Tan(fovY/2)
	w := h / aspect
	return Mat4FromArray([16]float32{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, zFar / (zNear - zFar), -1,
		0, 0, zNear * zFar / (zNear - zFar), 0,
	})
}

// PerspectiveFovLH is the left-handed form of PerspectiveFovRH.
func PerspectiveFovLH(fovY, aspect, zNear, zFar float32) Mat4 {
	h := 1 / math32.Tan(fovY/2)
	w := h / aspect
	return Mat4FromArray([16]float32{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, zFar / (zFar - zNear), 1,
		0, 0, -zNear * zFar / (zFar - zNear), 0,
	})
}

// PerspectiveRH returns a right-handed perspective projection for a view
// volume of the given width and height at the near plane.
func PerspectiveRH(width, height, zNear, zFar float32) Mat4 {
	return Mat4FromArray([16]float32{
		2 * zNear / width, 0, 0, 0,
		0, 2 * zNear / height, 0, 0,
		0, 0, zFar / (zNear - zFar), -1,
		0, 0, zNear * zFar / (zNear - zFar), 0,
	})
}

// PerspectiveLH is the left-handed form of PerspectiveRH.
func PerspectiveLH(width, height, zNear, zFar float32) Mat4 {
	return Mat4FromArray([16]float32{
		2 * zNear / width, 0, 0, 0,
		0, 2 * zNear / height, 0, 0,
		0, 0, zFar / (zFar - zNear), 1,
		0, 0, zNear * zFar / (zNear - zFar), 0,
	})
}

// OrthoLH returns a left-handed orthographic projection.
func OrthoLH(width, height, zNear, zFar float32) Mat4 {
	return Mat4FromArray([16]float32{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, 1 / (zFar - zNear), 0,
		0, 0, zNear / (zNear - zFar), 1,
	})
}

// OrthoRH returns a right-handed orthographic projection.
func OrthoRH(width, height, zNear, zFar float32) Mat4 {
	return Mat4FromArray([16]float32{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, 1 / (zNear - zFar), 0,
		0, 0, zNear / (zNear - zFar), 1,
	})
}

// LookAtLH returns a left-handed view matrix for a camera at position
// looking at target.
func LookAtLH(position, target, up Vec3) Mat4 {
	return lookAt(position, target.Sub(position).Normalize(), up)
}

// LookAtRH returns a right-handed view matrix for a camera at position
// looking at target.
func LookAtRH(position, target, up Vec3) Mat4 {
	return lookAt(position, position.Sub(target).Normalize(), up)
}

func lookAt(position, zaxis, up Vec3) Mat4 {
	xaxis := up.Cross(zaxis).Normalize()
	yaxis := zaxis.Cross(xaxis)
	return Mat4FromArray([16]float32{
		xaxis.X, yaxis.X, zaxis.X, 0,
		xaxis.Y, yaxis.Y, zaxis.Y, 0,
		xaxis.Z, yaxis.Z, zaxis.Z, 0,
		-xaxis.Dot(position), -yaxis.Dot(position), -zaxis.Dot(position), 1,
	})
}

// ShadowMatrix returns the planar projection that flattens geometry onto
// plane as seen from light. point is the w of the light: 1 for a point
// light, 0 for a directional one.
func ShadowMatrix(light Vec3, plane Plane3, point float32) Mat4 {
	n := plane.Normal.Normalize()
	d := n.Dot(light)
	return Mat4FromArray([16]float32{
		-n.X*light.X + d, -n.X * light.Y, -n.X * light.Z, -n.X * point,
		-n.Y * light.X, -n.Y*light.Y + d, -n.Y * light.Z, -n.Y * point,
		-n.Z * light.X, -n.Z * light.Y, -n.Z*light.Z + d, -n.Z * point,
		-plane.D * light.X, -plane.D * light.Y, -plane.D * light.Z, -plane.D*point + d,
	})
}

// NDCToDC maps normalized device coordinates in [-1, 1] onto the pixel
// rectangle viewport, scaling depth by zScale.
func NDCToDC(viewport Rect, zScale float32) Mat4 {
	scaleX := (float32(viewport.Width()) - 0.75) / 2
	scaleY := -(float32(viewport.Height()) - 0.75) / 2
	dx := -0.5 + float32(viewport.X0+viewport.X1)/2
	dy := -0.5 + float32(viewport.Y0+viewport.Y1)/2

	m := Identity()
	m.SetTranslation(Vec3{dx, dy, 0})
	m.SetScale(Vec3{scaleX, scaleY, zScale})
	return m
}

// TextureTransform builds a texture-coordinate matrix that scales,
// rotates about center, then translates.
func TextureTransform(rotateRad float32, center, translate, scale Vec2) Mat4 {
	c, s := math32.Cos(rotateRad), math32.Sin(rotateRad)
	return Mat4FromArray([16]float32{
		c * scale.X, s * scale.Y, 0, 0,
		-s * scale.X, c * scale.Y, 0, 0,
		c*scale.X*center.X - s*center.Y + translate.X, s*scale.Y*center.X + c*center.Y + translate.Y, 1, 0,
		0, 0, 0, 1,
	})
}

// SetTextureRotationCenter sets the texture rotation about (0.5, 0.5).
func (m *Mat4) SetTextureRotationCenter(rotateRad float32) {
	c, s := math32.Cos(rotateRad), math32.Sin(rotateRad)
	m.m[0], m.m[1] = c, s
	m.m[4], m.m[5] = -s, c
	m.m[8] = 0.5*(s-c) + 0.5
	m.m[9] = -0.5*(s+c) + 0.5
	m.identity = m.identity && rotateRad == 0
}

// SetTextureTranslate sets the texture-coordinate translation.
func (m *Mat4) SetTextureTranslate(x, y float32) {
	m.m[8], m.m[9] = x, y
	m.identity = m.identity && x == 0 && y == 0
}

// SetTextureScale sets the texture-coordinate scale.
func (m *Mat4) SetTextureScale(sx, sy float32) {
	m.m[0], m.m[5] = sx, sy
	m.identity = m.identity && sx == 1 && sy == 1
}

// SetTextureScaleCenter scales texture coordinates about (0.5, 0.5).
func (m *Mat4) SetTextureScaleCenter(sx, sy float32) {
	m.m[0], m.m[5] = sx, sy
	m.m[8] = 0.5 - 0.5*sx
	m.m[9] = 0.5 - 0.5*sy
	m.identity = m.identity && sx == 1 && sy == 1
}
