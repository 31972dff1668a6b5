// Package skinned holds skeletal meshes: material-partitioned vertex
// buffers, a joint hierarchy with keyframe tracks, and vertex weights.
package skinned

import (
	"image/color"

	"github.com/Faultbox/skelmesh/pkg/math"
)

// Vertex is a mesh buffer vertex. Two vertices are duplicates when every
// field compares equal.
type Vertex struct {
	Pos     math.Vec3
	Normal  math.Vec3
	TCoords math.Vec2
	Color   color.NRGBA
}

// Texture is an opaque handle produced by a texture resolver.
type Texture interface {
	Path() string
}

// Material describes how a buffer is shaded.
type Material struct {
	Name          string
	AmbientColor  color.NRGBA
	DiffuseColor  color.NRGBA
	SpecularColor color.NRGBA
	EmissiveColor color.NRGBA
	Shininess     float32
	Transparency  float32 // 1 is opaque
	Texture       Texture // nil when untextured
	AlphaMap      Texture
}

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

// DefaultMaterial returns the material given to buffers that have no
// material of their own: white ambient, diffuse and specular, black
// emissive.
func DefaultMaterial() Material {
	return Material{
		AmbientColor:  white,
		DiffuseColor:  white,
		SpecularColor: white,
		EmissiveColor: black,
		Transparency:  1,
	}
}

// RotationKey is a rotation keyframe.
type RotationKey struct {
	Frame    float32
	Rotation math.Quat
}

// PositionKey is a position keyframe.
type PositionKey struct {
	Frame    float32
	Position math.Vec3
}

// Joint is a node of the skeleton. Joints live in Mesh.Joints and refer
// to each other by index.
type Joint struct {
	Name     string
	Parent   int   // -1 for roots
	Children []int // indices into Mesh.Joints

	// LocalMatrix is the rest transform relative to the parent.
	LocalMatrix math.Mat4

	// Keyframes in creation order.
	RotationKeys []RotationKey
	PositionKeys []PositionKey

	// Set by Finalize.
	GlobalMatrix         math.Mat4
	GlobalInversedMatrix math.Mat4
}

// HasAnimation reports whether the joint has any keyframes.
func (j *Joint) HasAnimation() bool {
	return len(j.RotationKeys) > 0 || len(j.PositionKeys) > 0
}

// Weight binds one buffer vertex to one joint.
type Weight struct {
	Joint    int
	Buffer   int
	Vertex   int
	Strength float32 // in [0, 1]
}
