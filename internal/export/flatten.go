// Package export writes skinned meshes to interchange formats.
package export

import (
	"fmt"

	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// Range locates one buffer inside flattened geometry.
type Range struct {
	VertexStart int
	VertexCount int
	IndexStart  int
	IndexCount  int
}

// Geometry is a mesh with all buffers concatenated in buffer order.
// Indices are global: each buffer's indices are rebased by its
// VertexStart.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Colors    [][4]uint8
	Indices   []uint32

	Ranges    []Range // one per buffer
	Materials []skinned.Material
}

// MaterialName returns the exported name of buffer i's material.
func MaterialName(i int) string {
	return fmt.Sprintf("mat%d", i)
}

// EffectName returns the exported name of buffer i's shading effect.
func EffectName(i int) string {
	return MaterialName(i) + "-fx"
}

// Flatten concatenates the mesh buffers. With a non-nil pose the skinned
// vertices are used instead of the rest pose.
func Flatten(mesh *skinned.Mesh, pose *skinned.Pose) *Geometry {
	g := &Geometry{
		Ranges:    make([]Range, len(mesh.Buffers)),
		Materials: make([]skinned.Material, len(mesh.Buffers)),
	}

	for i := range mesh.Buffers {
		buf := &mesh.Buffers[i]
		verts := buf.Vertices
		if pose != nil {
			verts = pose.SkinBuffer(i)
		}

		start := len(g.Positions)
		g.Ranges[i] = Range{
			VertexStart: start,
			VertexCount: len(verts),
			IndexStart:  len(g.Indices),
			IndexCount:  len(buf.Indices),
		}
		g.Materials[i] = buf.Material

		for _, v := range verts {
			g.Positions = append(g.Positions, v.Pos.Array())
			g.Normals = append(g.Normals, v.Normal.Array())
			g.TexCoords = append(g.TexCoords, [2]float32{v.TCoords.X, v.TCoords.Y})
			g.Colors = append(g.Colors, [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A})
		}
		for _, idx := range buf.Indices {
			g.Indices = append(g.Indices, idx+uint32(start))
		}
	}
	return g
}

// BufferIndices returns buffer i's indices relative to its own vertices.
func (g *Geometry) BufferIndices(i int) []uint32 {
	r := g.Ranges[i]
	out := make([]uint32, r.IndexCount)
	for k, idx := range g.Indices[r.IndexStart : r.IndexStart+r.IndexCount] {
		out[k] = idx - uint32(r.VertexStart)
	}
	return out
}
