package export

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skelmesh/pkg/math"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

type fileTexture string

func (f fileTexture) Path() string { return string(f) }

func vtx(x, y, z float32) skinned.Vertex {
	return skinned.Vertex{
		Pos:     math.Vec3{X: x, Y: y, Z: z},
		Normal:  math.Vec3{Z: 1},
		TCoords: math.Vec2{X: x, Y: y},
		Color:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// twoBufferMesh has a triangle in each of two buffers, every vertex bound
// to one of two joints.
func twoBufferMesh(t *testing.T, weighted bool) *skinned.Mesh {
	t.Helper()
	m := skinned.New()
	root := m.CreateJoint("root", -1)
	arm := m.CreateJoint("arm", root)
	m.Joints[arm].LocalMatrix.SetTranslation(math.Vec3{X: 2})

	for b := 0; b < 2; b++ {
		idx := m.CreateBuffer()
		buf := m.Buffer(idx)
		if b == 1 {
			buf.Material.Texture = fileTexture(`C:\art\skin.bmp`)
			buf.Material.Transparency = 0.5
		}
		off := float32(b * 10)
		i0, _ := buf.AddVertex(vtx(off, 0, 0))
		i1, _ := buf.AddVertex(vtx(off+1, 0, 0))
		i2, _ := buf.AddVertex(vtx(off, 1, 0))
		buf.AddTriangle(i0, i1, i2)
		if weighted {
			for _, v := range []uint32{i0, i1, i2} {
				m.CreateWeight(b, idx, int(v), 1)
			}
		}
	}
	require.NoError(t, m.Finalize())
	return m
}

func TestFlatten(t *testing.T) {
	m := twoBufferMesh(t, true)
	g := Flatten(m, nil)

	assert.Len(t, g.Positions, 6)
	assert.Equal(t, []Range{
		{VertexStart: 0, VertexCount: 3, IndexStart: 0, IndexCount: 3},
		{VertexStart: 3, VertexCount: 3, IndexStart: 3, IndexCount: 3},
	}, g.Ranges)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, g.Indices)
	assert.Equal(t, []uint32{0, 1, 2}, g.BufferIndices(1))
	assert.Equal(t, [3]float32{10, 0, 0}, g.Positions[3])
	assert.Equal(t, "mat1", MaterialName(1))
	assert.Equal(t, "mat1-fx", EffectName(1))
}

func TestFlattenPosed(t *testing.T) {
	m := twoBufferMesh(t, true)

	pose, err := m.SamplePose(0)
	require.NoError(t, err)

	// Without keys the pose equals the rest pose.
	rest := Flatten(m, nil)
	posed := Flatten(m, pose)
	for i := range rest.Positions {
		got := math.Vec3FromArray(posed.Positions[i])
		assert.True(t, got.Equals(math.Vec3FromArray(rest.Positions[i]), 1e-5))
	}
}

func TestWriteOBJ(t *testing.T) {
	g := Flatten(twoBufferMesh(t, false), nil)

	var obj, mtl bytes.Buffer
	require.NoError(t, WriteOBJ(&obj, &mtl, g, "out/hero.mtl"))

	lines := strings.Split(strings.TrimSpace(obj.String()), "\n")
	assert.Equal(t, "mtllib hero.mtl", lines[0])
	assert.Equal(t, 6, countPrefix(lines, "v "))
	assert.Equal(t, 6, countPrefix(lines, "vt "))
	assert.Equal(t, 6, countPrefix(lines, "vn "))
	assert.Contains(t, lines, "usemtl mat0")
	assert.Contains(t, lines, "f 4/4/4 5/5/5 6/6/6")
	assert.Contains(t, lines, "vt 0.000000 0.000000", "V is flipped")

	assert.Contains(t, mtl.String(), "newmtl mat1\n")
	assert.Contains(t, mtl.String(), "map_Kd skin.bmp\n")
	assert.Contains(t, mtl.String(), "d 0.500000\n")
}

func TestWriteOBJWithoutMaterials(t *testing.T) {
	g := Flatten(twoBufferMesh(t, false), nil)
	var obj bytes.Buffer
	require.NoError(t, WriteOBJ(&obj, nil, g, ""))
	assert.NotContains(t, obj.String(), "mtllib")
	assert.NotContains(t, obj.String(), "usemtl")
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestBuildGLTFSkinned(t *testing.T) {
	m := twoBufferMesh(t, true)
	doc, err := BuildGLTF(m, "hero")
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 3, "two joints and the mesh node")
	assert.Equal(t, "root", doc.Nodes[0].Name)
	assert.Equal(t, []uint32{1}, doc.Nodes[0].Children)
	assert.Equal(t, [3]float32{2, 0, 0}, doc.Nodes[1].Translation)

	require.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Meshes[0].Primitives, 2)
	prim := doc.Meshes[0].Primitives[0]
	assert.Contains(t, prim.Attributes, gltf.JOINTS_0)
	assert.Contains(t, prim.Attributes, gltf.WEIGHTS_0)

	require.Len(t, doc.Skins, 1)
	assert.Equal(t, []uint32{0, 1}, doc.Skins[0].Joints)
	require.NotNil(t, doc.Skins[0].Skeleton)
	assert.EqualValues(t, 0, *doc.Skins[0].Skeleton)
	assert.NotNil(t, doc.Nodes[2].Skin)

	require.Len(t, doc.Materials, 2)
	assert.Equal(t, gltf.AlphaBlend, doc.Materials[1].AlphaMode)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "skin.bmp", doc.Images[0].URI)

	assert.Equal(t, []uint32{0, 2}, doc.Scenes[0].Nodes)
}

func TestBuildGLTFSkipsSkinForUnweightedVertices(t *testing.T) {
	m := twoBufferMesh(t, false)
	doc, err := BuildGLTF(m, "static")
	require.NoError(t, err)

	assert.Empty(t, doc.Skins)
	assert.NotContains(t, doc.Meshes[0].Primitives[0].Attributes, gltf.JOINTS_0)
}

func TestBuildGLTFRequiresFinalize(t *testing.T) {
	_, err := BuildGLTF(skinned.New(), "x")
	assert.ErrorIs(t, err, skinned.ErrNotFinalized)
}

func TestWriteGLTFRoundTrip(t *testing.T) {
	for _, binary := range []bool{true, false} {
		doc, err := BuildGLTF(twoBufferMesh(t, true), "hero")
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, WriteGLTF(&out, doc, binary))
		if binary {
			assert.Equal(t, "glTF", out.String()[:4])
		} else {
			assert.Contains(t, out.String(), "data:application/octet-stream;base64,")
		}

		var back gltf.Document
		require.NoError(t, gltf.NewDecoder(&out).Decode(&back))
		assert.Len(t, back.Nodes, 3)
		assert.Len(t, back.Skins, 1)
		assert.Len(t, back.Meshes[0].Primitives, 2)
	}
}

func TestPackInfluences(t *testing.T) {
	joints, weights := packInfluences([][]influence{
		{{joint: 3, strength: 1}},
		{{0, 0.1}, {1, 0.4}, {2, 0.2}, {3, 0.2}, {4, 0.1}},
	})

	assert.Equal(t, [4]uint16{3, 0, 0, 0}, joints[0])
	assert.Equal(t, [4]float32{1, 0, 0, 0}, weights[0])

	assert.Equal(t, [4]uint16{1, 2, 3, 0}, joints[1])
	var sum float32
	for _, w := range weights[1] {
		sum += w
	}
	assert.InDelta(t, 1, sum, 1e-6)
	assert.InDelta(t, 0.4/0.9, weights[1][0], 1e-6)
}

func TestDecompose(t *testing.T) {
	m := math.RotateY(90 * math.DegToRad).Mul(math.Scale(2, 3, 4))
	m.SetTranslation(math.Vec3{X: 1, Y: 2, Z: 3})

	tr, rot, sc := decompose(m)
	assert.Equal(t, [3]float32{1, 2, 3}, tr)
	assert.InDeltaSlice(t, []float32{2, 3, 4}, sc[:], 1e-5)

	q := math.Quat{X: rot[0], Y: rot[1], Z: rot[2], W: rot[3]}
	want := math.QuatFromAxisAngle(math.Vec3{Y: 1}, 90 * math.DegToRad)
	assert.True(t, q.Equals(want, 1e-5), "got %v", q)
}
