package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/skelmesh/pkg/math"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// maxInfluences is the number of joints JOINTS_0 can hold per vertex.
const maxInfluences = 4

// influence is one joint affecting a vertex.
type influence struct {
	joint    int
	strength float32
}

// BuildGLTF converts a finalized mesh into a glTF document: one node per
// joint carrying its rest transform, one mesh with a primitive per
// non-empty buffer, and a skin when every vertex is weighted.
func BuildGLTF(mesh *skinned.Mesh, name string) (*gltf.Document, error) {
	if !mesh.IsFinalized() {
		return nil, skinned.ErrNotFinalized
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "skelmesh ms3dtool"

	// Joint nodes come first so joint i is node i.
	for i := range mesh.Joints {
		j := &mesh.Joints[i]
		t, r, s := decompose(j.LocalMatrix)
		node := &gltf.Node{
			Name:        j.Name,
			Translation: t,
			Rotation:    r,
			Scale:       s,
		}
		for _, c := range j.Children {
			node.Children = append(node.Children, uint32(c))
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	influences := collectInfluences(mesh)
	skinnable := len(mesh.Joints) > 0
	for b := range influences {
		for _, infl := range influences[b] {
			if len(infl) == 0 {
				skinnable = false
			}
		}
	}

	materials := make([]uint32, len(mesh.Buffers))
	for i := range mesh.Buffers {
		materials[i] = addMaterial(doc, i, &mesh.Buffers[i].Material)
	}

	var primitives []*gltf.Primitive
	for i := range mesh.Buffers {
		buf := &mesh.Buffers[i]
		if len(buf.Vertices) == 0 || len(buf.Indices) == 0 {
			continue
		}

		n := len(buf.Vertices)
		positions := make([][3]float32, n)
		normals := make([][3]float32, n)
		uvs := make([][2]float32, n)
		colors := make([][4]uint8, n)
		for k, v := range buf.Vertices {
			positions[k] = v.Pos.Array()
			normals[k] = v.Normal.Normalize().Array()
			uvs[k] = [2]float32{v.TCoords.X, v.TCoords.Y}
			colors[k] = [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
		}

		attributes := map[string]uint32{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
			gltf.COLOR_0:    modeler.WriteColor(doc, colors),
		}
		if skinnable {
			joints, weights := packInfluences(influences[i])
			attributes[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints)
			attributes[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, weights)
		}

		indices := modeler.WriteIndices(doc, append([]uint32(nil), buf.Indices...))
		primitives = append(primitives, &gltf.Primitive{
			Attributes: attributes,
			Indices:    gltf.Index(indices),
			Material:   gltf.Index(materials[i]),
			Mode:       gltf.PrimitiveTriangles,
		})
	}

	scene := doc.Scenes[0]
	for _, root := range mesh.RootJoints() {
		scene.Nodes = append(scene.Nodes, uint32(root))
	}

	if len(primitives) == 0 {
		return doc, nil
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: primitives})
	meshNode := &gltf.Node{
		Name:     name,
		Mesh:     gltf.Index(uint32(len(doc.Meshes) - 1)),
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
	if skinnable {
		doc.Skins = append(doc.Skins, buildSkin(doc, mesh, name))
		meshNode.Skin = gltf.Index(uint32(len(doc.Skins) - 1))
	}
	doc.Nodes = append(doc.Nodes, meshNode)
	scene.Nodes = append(scene.Nodes, uint32(len(doc.Nodes)-1))

	return doc, nil
}

// WriteGLTF encodes doc to w, as GLB when binary is set and otherwise as
// glTF JSON with embedded buffers.
func WriteGLTF(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding gltf: %w", err)
	}
	return nil
}

func buildSkin(doc *gltf.Document, mesh *skinned.Mesh, name string) *gltf.Skin {
	ibm := make([][4][4]float32, len(mesh.Joints))
	joints := make([]uint32, len(mesh.Joints))
	for i := range mesh.Joints {
		a := mesh.Joints[i].GlobalInversedMatrix.Array()
		for c := 0; c < 4; c++ {
			copy(ibm[i][c][:], a[c*4:c*4+4])
		}
		joints[i] = uint32(i)
	}
	skin := &gltf.Skin{
		Name:                name,
		InverseBindMatrices: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, ibm)),
		Joints:              joints,
	}
	if roots := mesh.RootJoints(); len(roots) == 1 {
		skin.Skeleton = gltf.Index(uint32(roots[0]))
	}
	return skin
}

func addMaterial(doc *gltf.Document, i int, m *skinned.Material) uint32 {
	d := m.DiffuseColor
	base := [4]float32{
		float32(d.R) / 255,
		float32(d.G) / 255,
		float32(d.B) / 255,
		clamp01(m.Transparency),
	}
	metallic := float32(0)
	roughness := 1 - clamp01(m.Shininess/128)

	mat := &gltf.Material{
		Name: MaterialName(i),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &base,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		EmissiveFactor: [3]float32{
			float32(m.EmissiveColor.R) / 255,
			float32(m.EmissiveColor.G) / 255,
			float32(m.EmissiveColor.B) / 255,
		},
		DoubleSided: true,
	}
	if base[3] < 1 {
		mat.AlphaMode = gltf.AlphaBlend
	}
	if m.Texture != nil {
		doc.Images = append(doc.Images, &gltf.Image{
			Name: textureFile(m.Texture),
			URI:  textureFile(m.Texture),
		})
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Source: gltf.Index(uint32(len(doc.Images) - 1)),
		})
		mat.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
			Index: uint32(len(doc.Textures) - 1),
		}
	}
	doc.Materials = append(doc.Materials, mat)
	return uint32(len(doc.Materials) - 1)
}

// collectInfluences groups weights by buffer and vertex.
func collectInfluences(mesh *skinned.Mesh) [][][]influence {
	out := make([][][]influence, len(mesh.Buffers))
	for i := range mesh.Buffers {
		out[i] = make([][]influence, len(mesh.Buffers[i].Vertices))
	}
	for _, w := range mesh.Weights {
		if w.Strength <= 0 {
			continue
		}
		out[w.Buffer][w.Vertex] = append(out[w.Buffer][w.Vertex], influence{joint: w.Joint, strength: w.Strength})
	}
	return out
}

// packInfluences keeps the strongest maxInfluences joints of each vertex
// and normalizes their strengths to sum to one.
func packInfluences(perVertex [][]influence) ([][4]uint16, [][4]float32) {
	joints := make([][4]uint16, len(perVertex))
	weights := make([][4]float32, len(perVertex))
	for v, infl := range perVertex {
		sorted := append([]influence(nil), infl...)
		sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].strength > sorted[b].strength })
		if len(sorted) > maxInfluences {
			sorted = sorted[:maxInfluences]
		}
		var sum float32
		for _, in := range sorted {
			sum += in.strength
		}
		for k, in := range sorted {
			joints[v][k] = uint16(in.joint)
			weights[v][k] = in.strength / sum
		}
	}
	return joints, weights
}

// decompose splits an affine matrix into glTF translation, rotation
// (x, y, z, w) and scale. Shear is dropped.
func decompose(m math.Mat4) ([3]float32, [4]float32, [3]float32) {
	g := mgl32.Mat4(m.Array())

	t := g.Col(3).Vec3()
	cols := [3]mgl32.Vec3{g.Col(0).Vec3(), g.Col(1).Vec3(), g.Col(2).Vec3()}
	var s [3]float32
	for i, c := range cols {
		s[i] = c.Len()
		if s[i] > 0 {
			cols[i] = c.Mul(1 / s[i])
		}
	}
	rot := mgl32.Mat4FromCols(cols[0].Vec4(0), cols[1].Vec4(0), cols[2].Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	q := mgl32.Mat4ToQuat(rot).Normalize()

	return [3]float32{t[0], t[1], t[2]}, [4]float32{q.V[0], q.V[1], q.V[2], q.W}, s
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
