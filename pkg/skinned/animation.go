package skinned

import (
	"errors"

	"github.com/Faultbox/skelmesh/pkg/math"
)

// ErrNotFinalized is returned when a finalized mesh is required.
var ErrNotFinalized = errors.New("skinned mesh not finalized")

// Pose is the skeleton evaluated at one frame.
type Pose struct {
	Frame  float32
	Global []math.Mat4 // per joint, in mesh space

	mesh  *Mesh
	skins []math.Mat4 // Global[i] * GlobalInversedMatrix[i]
}

// SamplePose evaluates every joint at frame. Joints without keyframes
// keep their rest LocalMatrix; a track with keys overrides the matching
// part of it.
func (m *Mesh) SamplePose(frame float32) (*Pose, error) {
	if !m.finalized {
		return nil, ErrNotFinalized
	}

	p := &Pose{
		Frame:  frame,
		Global: make([]math.Mat4, len(m.Joints)),
		mesh:   m,
		skins:  make([]math.Mat4, len(m.Joints)),
	}
	walkJoints(m.Joints, m.roots, func(idx int, parent *math.Mat4) math.Mat4 {
		j := &m.Joints[idx]
		local := j.localAt(frame)
		if parent != nil {
			local = parent.Mul(local)
		}
		p.Global[idx] = local
		p.skins[idx] = local.Mul(j.GlobalInversedMatrix)
		return local
	})
	return p, nil
}

func (j *Joint) localAt(frame float32) math.Mat4 {
	if !j.HasAnimation() {
		return j.LocalMatrix
	}

	var local math.Mat4
	if len(j.RotationKeys) > 0 {
		local = interpolateRotation(j.RotationKeys, frame).ToMat4()
	} else {
		local = j.LocalMatrix
	}
	if len(j.PositionKeys) > 0 {
		local.SetTranslation(interpolatePosition(j.PositionKeys, frame))
	} else {
		local.SetTranslation(j.LocalMatrix.Translation())
	}
	return local
}

// interpolateRotation slerps between the keys surrounding frame. Keys
// must be sorted by frame; frames outside the track clamp to its ends.
func interpolateRotation(keys []RotationKey, frame float32) math.Quat {
	prev, next, t := bracket(len(keys), func(i int) float32 { return keys[i].Frame }, frame)
	if prev == next {
		return keys[prev].Rotation
	}
	return keys[prev].Rotation.Slerp(keys[next].Rotation, t)
}

// interpolatePosition lerps between the keys surrounding frame.
func interpolatePosition(keys []PositionKey, frame float32) math.Vec3 {
	prev, next, t := bracket(len(keys), func(i int) float32 { return keys[i].Frame }, frame)
	if prev == next {
		return keys[prev].Position
	}
	return keys[prev].Position.Lerp(keys[next].Position, t)
}

// bracket finds the keys surrounding frame in a track of n > 0 keys.
func bracket(n int, frameOf func(int) float32, frame float32) (prev, next int, t float32) {
	for i := 0; i < n; i++ {
		if frameOf(i) > frame {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return prev, next, 0
	}
	f0, f1 := frameOf(prev), frameOf(next)
	if f1 != f0 {
		t = (frame - f0) / (f1 - f0)
	}
	return prev, next, t
}

// SkinMatrix returns the matrix taking rest-pose mesh coordinates to the
// posed coordinates of joint.
func (p *Pose) SkinMatrix(joint int) math.Mat4 {
	return p.skins[joint]
}

// SkinBuffer returns a copy of buffer i's vertices deformed by the pose.
// Each weighted vertex becomes the strength-weighted sum of its joints'
// skin transforms; normals are rotated and renormalized. Vertices without
// weights keep their rest position.
func (p *Pose) SkinBuffer(i int) []Vertex {
	src := p.mesh.Buffers[i].Vertices
	out := make([]Vertex, len(src))
	copy(out, src)

	weights := p.mesh.bufferWeights[i]
	if len(weights) == 0 {
		return out
	}

	touched := make([]bool, len(src))
	for _, wi := range weights {
		w := p.mesh.Weights[wi]
		if !touched[w.Vertex] {
			touched[w.Vertex] = true
			out[w.Vertex].Pos = math.Vec3{}
			out[w.Vertex].Normal = math.Vec3{}
		}
		skin := p.skins[w.Joint]
		rest := src[w.Vertex]
		v := &out[w.Vertex]
		v.Pos = v.Pos.Add(skin.TransformVect(rest.Pos).Scale(w.Strength))
		v.Normal = v.Normal.Add(skin.RotateVect(rest.Normal).Scale(w.Strength))
	}
	for vi := range out {
		if touched[vi] {
			out[vi].Normal = out[vi].Normal.Normalize()
		}
	}
	return out
}

// BoundingBox returns the bounds of all skinned buffers. Empty meshes
// yield the zero box.
func (p *Pose) BoundingBox() math.AABox3 {
	var box math.AABox3
	first := true
	for i := range p.mesh.Buffers {
		for _, v := range p.SkinBuffer(i) {
			if first {
				box.Reset(v.Pos)
				first = false
				continue
			}
			box.AddPoint(v.Pos)
		}
	}
	return box
}
