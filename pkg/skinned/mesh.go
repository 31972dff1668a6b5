package skinned

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skelmesh/pkg/math"
)

// Mesh errors.
var (
	ErrFinalized     = errors.New("skinned mesh already finalized")
	ErrInvalidWeight = errors.New("invalid vertex weight")
	ErrJointCycle    = errors.New("joint hierarchy contains a cycle")
	ErrInvalidJoint  = errors.New("invalid joint index")
)

// Mesh owns the joints, buffers and weights of a skeletal mesh.
//
// A Mesh is built by a single goroutine through the Create* methods and
// then sealed with Finalize. Until Finalize succeeds the mesh must not be
// handed to renderers; after it, the mesh is read-only and may be shared.
type Mesh struct {
	Joints  []Joint
	Buffers []Buffer
	Weights []Weight

	FramesPerSecond float32
	FrameCount      int // animation length in frames

	BoundingBox math.AABox3

	roots         []int
	bufferWeights [][]int // weight indices per buffer
	finalized     bool
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{FramesPerSecond: 1}
}

func (m *Mesh) mustBuild() {
	if m.finalized {
		panic("skinned: mesh modified after Finalize")
	}
}

// CreateBuffer appends an empty buffer with the default material and
// returns its index.
func (m *Mesh) CreateBuffer() int {
	m.mustBuild()
	m.Buffers = append(m.Buffers, Buffer{Material: DefaultMaterial()})
	return len(m.Buffers) - 1
}

// Buffer returns the buffer at index i. The pointer is invalidated by the
// next CreateBuffer.
func (m *Mesh) Buffer(i int) *Buffer {
	return &m.Buffers[i]
}

// CreateJoint appends a joint with an identity local matrix and returns
// its index. A parent of -1 creates a root; otherwise the joint is
// attached to parent.
func (m *Mesh) CreateJoint(name string, parent int) int {
	m.mustBuild()
	m.Joints = append(m.Joints, Joint{
		Name:        name,
		Parent:      -1,
		LocalMatrix: math.Identity(),
	})
	idx := len(m.Joints) - 1
	if parent >= 0 {
		if err := m.AttachJoint(idx, parent); err != nil {
			panic(fmt.Sprintf("skinned: CreateJoint: %v", err))
		}
	}
	return idx
}

// AttachJoint makes parent the parent of child. It fails when either
// index is out of range, when child already has a parent, or when the
// link would close a cycle.
func (m *Mesh) AttachJoint(child, parent int) error {
	m.mustBuild()
	if child < 0 || child >= len(m.Joints) || parent < 0 || parent >= len(m.Joints) {
		return fmt.Errorf("%w: attach %d to %d", ErrInvalidJoint, child, parent)
	}
	if m.Joints[child].Parent >= 0 {
		return fmt.Errorf("%w: joint %d already has parent %d", ErrInvalidJoint, child, m.Joints[child].Parent)
	}
	for p := parent; p >= 0; p = m.Joints[p].Parent {
		if p == child {
			return fmt.Errorf("%w: attach %q to %q", ErrJointCycle, m.Joints[child].Name, m.Joints[parent].Name)
		}
	}
	m.Joints[child].Parent = parent
	m.Joints[parent].Children = append(m.Joints[parent].Children, child)
	return nil
}

// CreateRotationKey appends a rotation key to joint and returns its index
// within the joint's track.
func (m *Mesh) CreateRotationKey(joint int, key RotationKey) int {
	m.mustBuild()
	j := &m.Joints[joint]
	j.RotationKeys = append(j.RotationKeys, key)
	return len(j.RotationKeys) - 1
}

// CreatePositionKey appends a position key to joint and returns its index
// within the joint's track.
func (m *Mesh) CreatePositionKey(joint int, key PositionKey) int {
	m.mustBuild()
	j := &m.Joints[joint]
	j.PositionKeys = append(j.PositionKeys, key)
	return len(j.PositionKeys) - 1
}

// CreateWeight binds vertex of buffer to joint and returns the weight
// index. References are checked by Finalize.
func (m *Mesh) CreateWeight(joint, buffer, vertex int, strength float32) int {
	m.mustBuild()
	m.Weights = append(m.Weights, Weight{
		Joint:    joint,
		Buffer:   buffer,
		Vertex:   vertex,
		Strength: strength,
	})
	return len(m.Weights) - 1
}

// Finalize validates the weights and computes the derived state: root
// joints, global rest matrices and their inverses, buffer and mesh
// bounding boxes, and the per-buffer weight index. It may be called once.
func (m *Mesh) Finalize() error {
	if m.finalized {
		return ErrFinalized
	}

	for i, w := range m.Weights {
		switch {
		case w.Joint < 0 || w.Joint >= len(m.Joints):
			return fmt.Errorf("%w %d: joint %d out of range", ErrInvalidWeight, i, w.Joint)
		case w.Buffer < 0 || w.Buffer >= len(m.Buffers):
			return fmt.Errorf("%w %d: buffer %d out of range", ErrInvalidWeight, i, w.Buffer)
		case w.Vertex < 0 || w.Vertex >= len(m.Buffers[w.Buffer].Vertices):
			return fmt.Errorf("%w %d: vertex %d out of range", ErrInvalidWeight, i, w.Vertex)
		case !(w.Strength >= 0 && w.Strength <= 1):
			return fmt.Errorf("%w %d: strength %v outside [0, 1]", ErrInvalidWeight, i, w.Strength)
		}
	}

	m.roots = m.roots[:0]
	for i := range m.Joints {
		if m.Joints[i].Parent < 0 {
			m.roots = append(m.roots, i)
		}
	}

	visited := 0
	walkJoints(m.Joints, m.roots, func(idx int, parent *math.Mat4) math.Mat4 {
		j := &m.Joints[idx]
		if parent == nil {
			j.GlobalMatrix = j.LocalMatrix
		} else {
			j.GlobalMatrix = parent.Mul(j.LocalMatrix)
		}
		inv, ok := j.GlobalMatrix.Inverse()
		if !ok {
			inv = math.Identity()
		}
		j.GlobalInversedMatrix = inv
		visited++
		return j.GlobalMatrix
	})
	if visited != len(m.Joints) {
		return fmt.Errorf("%w: %d of %d joints unreachable from a root", ErrJointCycle, len(m.Joints)-visited, len(m.Joints))
	}

	m.bufferWeights = make([][]int, len(m.Buffers))
	for i, w := range m.Weights {
		m.bufferWeights[w.Buffer] = append(m.bufferWeights[w.Buffer], i)
	}

	m.BoundingBox = math.AABox3{}
	first := true
	for i := range m.Buffers {
		b := &m.Buffers[i]
		b.RecalculateBoundingBox()
		if len(b.Vertices) == 0 {
			continue
		}
		if first {
			m.BoundingBox = b.BoundingBox
			first = false
		} else {
			m.BoundingBox.AddBox(b.BoundingBox)
		}
	}

	m.finalized = true
	return nil
}

// walkJoints visits joints depth-first from roots, parents before
// children. visit receives the parent's result, or nil for a root.
func walkJoints(joints []Joint, roots []int, visit func(idx int, parent *math.Mat4) math.Mat4) {
	type frame struct {
		idx    int
		parent *math.Mat4
	}
	stack := make([]frame, 0, len(joints))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{idx: roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result := visit(f.idx, f.parent)
		children := joints[f.idx].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: children[i], parent: &result})
		}
	}
}

// IsFinalized reports whether Finalize has succeeded.
func (m *Mesh) IsFinalized() bool {
	return m.finalized
}

// RootJoints returns the indices of joints without a parent. It is valid
// after Finalize.
func (m *Mesh) RootJoints() []int {
	return m.roots
}

// JointByName returns the index of the first joint named name, or -1.
func (m *Mesh) JointByName(name string) int {
	for i := range m.Joints {
		if m.Joints[i].Name == name {
			return i
		}
	}
	return -1
}

// WeightsForJoint returns every weight bound to joint.
func (m *Mesh) WeightsForJoint(joint int) []Weight {
	var out []Weight
	for _, w := range m.Weights {
		if w.Joint == joint {
			out = append(out, w)
		}
	}
	return out
}

// HasAnimation reports whether any joint carries keyframes.
func (m *Mesh) HasAnimation() bool {
	for i := range m.Joints {
		if m.Joints[i].HasAnimation() {
			return true
		}
	}
	return false
}

// VertexCount returns the number of vertices across all buffers.
func (m *Mesh) VertexCount() int {
	n := 0
	for i := range m.Buffers {
		n += len(m.Buffers[i].Vertices)
	}
	return n
}

// TriangleCount returns the number of indexed triangles across all
// buffers.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.Buffers {
		n += m.Buffers[i].TriangleCount()
	}
	return n
}
