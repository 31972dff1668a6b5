package skinned

import "github.com/Faultbox/skelmesh/pkg/math"

// Buffer is a material-indexed partition of a mesh.
type Buffer struct {
	Material    Material
	Vertices    []Vertex
	Indices     []uint32
	BoundingBox math.AABox3
}

// AddVertex appends v unless an identical vertex is already present and
// returns the index of the stored vertex. The lookup is a linear scan.
func (b *Buffer) AddVertex(v Vertex) (index uint32, added bool) {
	for i := range b.Vertices {
		if b.Vertices[i] == v {
			return uint32(i), false
		}
	}
	b.Vertices = append(b.Vertices, v)
	return uint32(len(b.Vertices) - 1), true
}

// AddTriangle appends one triangle to the index list.
func (b *Buffer) AddTriangle(i0, i1, i2 uint32) {
	b.Indices = append(b.Indices, i0, i1, i2)
}

// TriangleCount returns the number of indexed triangles.
func (b *Buffer) TriangleCount() int {
	return len(b.Indices) / 3
}

// RecalculateBoundingBox recomputes BoundingBox from the vertices. An
// empty buffer gets the zero box.
func (b *Buffer) RecalculateBoundingBox() {
	if len(b.Vertices) == 0 {
		b.BoundingBox = math.AABox3{}
		return
	}
	b.BoundingBox.Reset(b.Vertices[0].Pos)
	for i := 1; i < len(b.Vertices); i++ {
		b.BoundingBox.AddPoint(b.Vertices[i].Pos)
	}
}
