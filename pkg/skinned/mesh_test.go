package skinned

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skelmesh/pkg/math"
)

func vtx(x, y, z float32) Vertex {
	return Vertex{Pos: math.Vec3{X: x, Y: y, Z: z}, Normal: math.Vec3{Y: 1}, Color: white}
}

func TestBufferAddVertexDedup(t *testing.T) {
	var b Buffer
	i0, added := b.AddVertex(vtx(0, 0, 0))
	require.True(t, added)
	i1, _ := b.AddVertex(vtx(1, 0, 0))
	i2, added := b.AddVertex(vtx(0, 0, 0))
	assert.False(t, added)
	assert.Equal(t, i0, i2)
	assert.NotEqual(t, i0, i1)
	assert.Len(t, b.Vertices, 2)

	// Differing only in texture coordinates is a different vertex.
	v := vtx(0, 0, 0)
	v.TCoords = math.Vec2{X: 0.5}
	_, added = b.AddVertex(v)
	assert.True(t, added)
}

func TestBufferBoundingBox(t *testing.T) {
	var b Buffer
	b.RecalculateBoundingBox()
	assert.Equal(t, math.AABox3{}, b.BoundingBox)

	b.AddVertex(vtx(-1, 2, 3))
	b.AddVertex(vtx(4, -5, 0))
	b.RecalculateBoundingBox()
	assert.Equal(t, math.Vec3{X: -1, Y: -5, Z: 0}, b.BoundingBox.Min)
	assert.Equal(t, math.Vec3{X: 4, Y: 2, Z: 3}, b.BoundingBox.Max)
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()
	assert.Equal(t, white, m.AmbientColor)
	assert.Equal(t, white, m.DiffuseColor)
	assert.Equal(t, white, m.SpecularColor)
	assert.Equal(t, black, m.EmissiveColor)
	assert.Nil(t, m.Texture)
}

func TestCreateJointHierarchy(t *testing.T) {
	m := New()
	root := m.CreateJoint("root", -1)
	arm := m.CreateJoint("arm", root)
	hand := m.CreateJoint("hand", arm)

	assert.Equal(t, -1, m.Joints[root].Parent)
	assert.Equal(t, []int{arm}, m.Joints[root].Children)
	assert.Equal(t, []int{hand}, m.Joints[arm].Children)
	assert.True(t, m.Joints[hand].LocalMatrix.IsIdentity())
	assert.Equal(t, arm, m.JointByName("arm"))
	assert.Equal(t, -1, m.JointByName("leg"))
}

func TestAttachJointRejectsCycles(t *testing.T) {
	m := New()
	a := m.CreateJoint("a", -1)
	b := m.CreateJoint("b", a)
	c := m.CreateJoint("c", -1)

	require.NoError(t, m.AttachJoint(c, b))

	// a is a root, attaching it below its own descendant closes a loop.
	err := m.AttachJoint(a, c)
	assert.ErrorIs(t, err, ErrJointCycle)

	err = m.AttachJoint(a, a)
	assert.ErrorIs(t, err, ErrJointCycle)

	err = m.AttachJoint(b, c)
	assert.ErrorIs(t, err, ErrInvalidJoint, "already parented")

	err = m.AttachJoint(7, a)
	assert.ErrorIs(t, err, ErrInvalidJoint)
}

func TestFinalizeGlobalMatrices(t *testing.T) {
	m := New()
	root := m.CreateJoint("root", -1)
	child := m.CreateJoint("child", root)

	m.Joints[root].LocalMatrix.SetTranslation(math.Vec3{X: 1})
	local := math.RotateZ(90 * math.DegToRad)
	local.SetTranslation(math.Vec3{Y: 2})
	m.Joints[child].LocalMatrix = local

	require.NoError(t, m.Finalize())
	assert.True(t, m.IsFinalized())
	assert.Equal(t, []int{root}, m.RootJoints())

	// Child origin sits at the root translation plus its own offset.
	origin := m.Joints[child].GlobalMatrix.TransformVect(math.Vec3{})
	assert.True(t, origin.Equals(math.Vec3{X: 1, Y: 2}, 1e-5), "got %v", origin)

	for i := range m.Joints {
		j := &m.Joints[i]
		prod := j.GlobalMatrix.Mul(j.GlobalInversedMatrix)
		assert.True(t, prod.ApproxEquals(math.Identity(), 1e-5), "joint %d", i)
	}
}

func TestFinalizeSingularGlobalFallsBackToIdentity(t *testing.T) {
	m := New()
	j := m.CreateJoint("flat", -1)
	m.Joints[j].LocalMatrix = math.Scale(1, 0, 1)

	require.NoError(t, m.Finalize())
	inv := m.Joints[j].GlobalInversedMatrix
	assert.True(t, inv.IsIdentity())
}

func TestFinalizeTwice(t *testing.T) {
	m := New()
	require.NoError(t, m.Finalize())
	assert.ErrorIs(t, m.Finalize(), ErrFinalized)
	assert.Panics(t, func() { m.CreateJoint("late", -1) })
	assert.Panics(t, func() { m.CreateBuffer() })
}

func TestFinalizeValidatesWeights(t *testing.T) {
	tests := []struct {
		name                  string
		joint, buffer, vertex int
		strength              float32
	}{
		{"joint out of range", 3, 0, 0, 1},
		{"negative joint", -1, 0, 0, 1},
		{"buffer out of range", 0, 2, 0, 1},
		{"vertex out of range", 0, 0, 5, 1},
		{"strength above one", 0, 0, 0, 1.5},
		{"negative strength", 0, 0, 0, -0.1},
		{"NaN strength", 0, 0, 0, math32.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.CreateJoint("j", -1)
			b := m.CreateBuffer()
			m.Buffer(b).AddVertex(vtx(0, 0, 0))
			m.CreateWeight(tt.joint, tt.buffer, tt.vertex, tt.strength)

			err := m.Finalize()
			if !errors.Is(err, ErrInvalidWeight) {
				t.Fatalf("expected ErrInvalidWeight, got %v", err)
			}
			assert.False(t, m.IsFinalized())
		})
	}
}

func TestFinalizeBoundingBoxes(t *testing.T) {
	m := New()
	b0 := m.CreateBuffer()
	m.Buffer(b0).AddVertex(vtx(0, 0, 0))
	m.Buffer(b0).AddVertex(vtx(1, 1, 1))
	m.CreateBuffer() // empty buffers do not contribute
	b2 := m.CreateBuffer()
	m.Buffer(b2).AddVertex(vtx(-2, 0.5, 3))

	require.NoError(t, m.Finalize())
	assert.Equal(t, math.Vec3{X: -2, Y: 0, Z: 0}, m.BoundingBox.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 3}, m.BoundingBox.Max)
	assert.Equal(t, math.Vec3{X: -2, Y: 0.5, Z: 3}, m.Buffers[b2].BoundingBox.Min)
	assert.Equal(t, 3, m.VertexCount())
}

func TestMeshCounters(t *testing.T) {
	m := New()
	b := m.CreateBuffer()
	buf := m.Buffer(b)
	i0, _ := buf.AddVertex(vtx(0, 0, 0))
	i1, _ := buf.AddVertex(vtx(1, 0, 0))
	i2, _ := buf.AddVertex(vtx(0, 1, 0))
	buf.AddTriangle(i0, i1, i2)

	j := m.CreateJoint("j", -1)
	m.CreateWeight(j, b, int(i1), 1)
	assert.False(t, m.HasAnimation())
	m.CreateRotationKey(j, RotationKey{Frame: 0, Rotation: math.QuatIdentity()})
	assert.True(t, m.HasAnimation())

	assert.Equal(t, 1, m.TriangleCount())
	assert.Len(t, m.WeightsForJoint(j), 1)
	assert.Empty(t, m.WeightsForJoint(5))
}
