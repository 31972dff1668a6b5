// MS3D (MilkShape 3D) binary model parser.
package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MS3D format errors.
var (
	ErrInvalidMS3DMagic       = fmt.Errorf("%w: invalid MS3D magic: expected 'MS3D000000'", ErrFormat)
	ErrUnsupportedMS3DVersion = fmt.Errorf("%w: unsupported MS3D version", ErrFormat)
	ErrTruncatedMS3DData      = fmt.Errorf("%w: truncated MS3D data", ErrIO)
)

const (
	MS3DMagic      = "MS3D000000"
	MS3DMinVersion = 3
	MS3DMaxVersion = 4

	// MS3DNoMaterial is the group material index meaning "no material".
	MS3DNoMaterial = 255

	ms3dNameLength = 32
	ms3dPathLength = 128

	ms3dHeaderSize      = 14
	ms3dVertexSize      = 15
	ms3dTriangleSize    = 70
	ms3dMaterialSize    = 361
	ms3dKeyframeSize    = 16
	ms3dJointHeaderSize = 93
	ms3dGroupMinSize    = 36 // flags, name, count, material
)

// MS3DVertex is a vertex record.
type MS3DVertex struct {
	Flags    uint8
	Position [3]float32
	BoneID   int8  // -1 when unbound
	RefCount uint8 // unused by the loader
}

// MS3DTriangle is a triangle record.
type MS3DTriangle struct {
	Flags          uint16
	VertexIndices  [3]uint16     // indices into MS3D.Vertices
	Normals        [3][3]float32 // per-corner normals
	S, T           [3]float32    // per-corner texture coordinates
	SmoothingGroup uint8
	GroupIndex     uint8 // index into MS3D.Groups
}

// MS3DGroup is a named triangle group bound to one material.
type MS3DGroup struct {
	Flags           uint8
	Name            string
	TriangleIndices []uint16 // indices into MS3D.Triangles
	MaterialIndex   uint8    // MS3DNoMaterial when unset
}

// HasMaterial reports whether the group names a material.
func (g *MS3DGroup) HasMaterial() bool {
	return g.MaterialIndex != MS3DNoMaterial
}

// MS3DMaterial is a material record. Colors are RGBA in [0, 1].
type MS3DMaterial struct {
	Name         string
	Ambient      [4]float32
	Diffuse      [4]float32
	Specular     [4]float32
	Emissive     [4]float32
	Shininess    float32 // 0..128
	Transparency float32 // 0..1
	Mode         uint8
	Texture      string // texture path as stored by the exporter
	AlphaMap     string
}

// MS3DKeyframe is a joint keyframe: rotation keys carry Euler radians,
// translation keys carry an offset from the rest position.
type MS3DKeyframe struct {
	Time      float32 // seconds
	Parameter [3]float32
}

// MS3DJoint is a joint record with its keyframes.
type MS3DJoint struct {
	Flags           uint8
	Name            string
	ParentName      string     // empty for roots
	Rotation        [3]float32 // rest rotation, Euler radians
	Translation     [3]float32 // rest translation
	RotationKeys    []MS3DKeyframe
	TranslationKeys []MS3DKeyframe
}

// MS3D is a decoded MilkShape 3D model.
type MS3D struct {
	Version   int32
	Vertices  []MS3DVertex
	Triangles []MS3DTriangle
	Groups    []MS3DGroup
	Materials []MS3DMaterial

	FramesPerSecond float32
	CurrentTime     float32 // editor state, unused
	FrameCount      int32
	Joints          []MS3DJoint

	// Issues lists inconsistencies repaired while decoding.
	Issues []Issue
}

// IsMS3DFile reports whether name has the .ms3d extension.
func IsMS3DFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".ms3d")
}

// ms3dReader wraps a bytes.Reader with a sticky error. After the first
// short read every later read is a no-op.
type ms3dReader struct {
	r    *bytes.Reader
	size int64
	err  error
}

func (d *ms3dReader) read(v any) {
	if d.err != nil {
		return
	}
	if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
		d.err = fmt.Errorf("%w at offset %d: %w", ErrTruncatedMS3DData, d.offset(), err)
	}
}

func (d *ms3dReader) offset() int64 {
	return d.size - int64(d.r.Len())
}

func (d *ms3dReader) readString(length int) string {
	buf := make([]byte, length)
	d.read(buf)
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// need fails the read when fewer than count*size bytes remain, so that a
// corrupt count never triggers a huge allocation.
func (d *ms3dReader) need(count, size int, what string) bool {
	if d.err != nil {
		return false
	}
	if int64(count)*int64(size) > int64(d.r.Len()) {
		d.err = fmt.Errorf("%w: %d %s need %d bytes at offset %d, %d left",
			ErrTruncatedMS3DData, count, what, count*size, d.offset(), d.r.Len())
		return false
	}
	return true
}

// ParseMS3D parses MS3D data from a byte slice. Multi-byte fields are
// decoded as little-endian regardless of the host byte order.
func ParseMS3D(data []byte) (*MS3D, error) {
	if len(data) < ms3dHeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncatedMS3DData, ms3dHeaderSize, len(data))
	}
	d := &ms3dReader{r: bytes.NewReader(data), size: int64(len(data))}

	// Read and validate magic
	magic := make([]byte, len(MS3DMagic))
	d.read(magic)
	if string(magic) != MS3DMagic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMS3DMagic, magic)
	}

	m := &MS3D{}
	d.read(&m.Version)
	if m.Version < MS3DMinVersion || m.Version > MS3DMaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMS3DVersion, m.Version)
	}

	m.Vertices = parseMS3DVertices(d)
	m.Triangles = parseMS3DTriangles(d)
	m.Groups = parseMS3DGroups(d)
	m.Materials = parseMS3DMaterials(d)

	// Animation trailer
	d.read(&m.FramesPerSecond)
	d.read(&m.CurrentTime)
	d.read(&m.FrameCount)
	if d.err == nil && m.FramesPerSecond <= 0 {
		m.Issues = append(m.Issues, Issue{
			Kind:   IssueFrameRate,
			Detail: fmt.Sprintf("frames per second %v replaced with 1", m.FramesPerSecond),
		})
		m.FramesPerSecond = 1
	}
	m.Joints = parseMS3DJoints(d)

	if d.err != nil {
		return nil, d.err
	}
	return m, nil
}

func parseMS3DVertices(d *ms3dReader) []MS3DVertex {
	var count uint16
	d.read(&count)
	if !d.need(int(count), ms3dVertexSize, "vertices") {
		return nil
	}
	vertices := make([]MS3DVertex, count)
	for i := range vertices {
		v := &vertices[i]
		d.read(&v.Flags)
		d.read(&v.Position)
		d.read(&v.BoneID)
		d.read(&v.RefCount)
	}
	return vertices
}

func parseMS3DTriangles(d *ms3dReader) []MS3DTriangle {
	var count uint16
	d.read(&count)
	if !d.need(int(count), ms3dTriangleSize, "triangles") {
		return nil
	}
	triangles := make([]MS3DTriangle, count)
	for i := range triangles {
		tri := &triangles[i]
		d.read(&tri.Flags)
		d.read(&tri.VertexIndices)
		d.read(&tri.Normals)
		d.read(&tri.S)
		d.read(&tri.T)
		d.read(&tri.SmoothingGroup)
		d.read(&tri.GroupIndex)
	}
	return triangles
}

func parseMS3DGroups(d *ms3dReader) []MS3DGroup {
	var count uint16
	d.read(&count)
	if !d.need(int(count), ms3dGroupMinSize, "groups") {
		return nil
	}
	groups := make([]MS3DGroup, count)
	for i := range groups {
		g := &groups[i]
		d.read(&g.Flags)
		g.Name = d.readString(ms3dNameLength)

		var triCount uint16
		d.read(&triCount)
		if !d.need(int(triCount), 2, "group triangle ids") {
			return nil
		}
		g.TriangleIndices = make([]uint16, triCount)
		d.read(g.TriangleIndices)
		d.read(&g.MaterialIndex)
	}
	return groups
}

func parseMS3DMaterials(d *ms3dReader) []MS3DMaterial {
	var count uint16
	d.read(&count)
	if !d.need(int(count), ms3dMaterialSize, "materials") {
		return nil
	}
	materials := make([]MS3DMaterial, count)
	for i := range materials {
		mat := &materials[i]
		mat.Name = d.readString(ms3dNameLength)
		d.read(&mat.Ambient)
		d.read(&mat.Diffuse)
		d.read(&mat.Specular)
		d.read(&mat.Emissive)
		d.read(&mat.Shininess)
		d.read(&mat.Transparency)
		d.read(&mat.Mode)
		mat.Texture = d.readString(ms3dPathLength)
		mat.AlphaMap = d.readString(ms3dPathLength)
	}
	return materials
}

func parseMS3DJoints(d *ms3dReader) []MS3DJoint {
	var count uint16
	d.read(&count)
	if !d.need(int(count), ms3dJointHeaderSize, "joints") {
		return nil
	}
	joints := make([]MS3DJoint, count)
	for i := range joints {
		j := &joints[i]
		d.read(&j.Flags)
		j.Name = d.readString(ms3dNameLength)
		j.ParentName = d.readString(ms3dNameLength)
		d.read(&j.Rotation)
		d.read(&j.Translation)

		var rotCount, transCount uint16
		d.read(&rotCount)
		d.read(&transCount)
		j.RotationKeys = parseMS3DKeyframes(d, rotCount)
		j.TranslationKeys = parseMS3DKeyframes(d, transCount)
		if d.err != nil {
			return nil
		}
	}
	return joints
}

func parseMS3DKeyframes(d *ms3dReader, count uint16) []MS3DKeyframe {
	if count == 0 || !d.need(int(count), ms3dKeyframeSize, "keyframes") {
		return nil
	}
	keys := make([]MS3DKeyframe, count)
	for i := range keys {
		d.read(&keys[i].Time)
		d.read(&keys[i].Parameter)
	}
	return keys
}

// ParseMS3DFile parses an MS3D file from disk.
func ParseMS3DFile(path string) (*MS3D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading MS3D file: %w", ErrIO, err)
	}
	return ParseMS3D(data)
}

// GetJointByName returns the first joint with the given name, or nil.
func (m *MS3D) GetJointByName(name string) *MS3DJoint {
	for i := range m.Joints {
		if m.Joints[i].Name == name {
			return &m.Joints[i]
		}
	}
	return nil
}

// GetKeyframeCount returns the number of rotation and translation keys
// across all joints.
func (m *MS3D) GetKeyframeCount() int {
	total := 0
	for i := range m.Joints {
		total += len(m.Joints[i].RotationKeys) + len(m.Joints[i].TranslationKeys)
	}
	return total
}

// HasAnimation returns true if any joint has keyframes.
func (m *MS3D) HasAnimation() bool {
	return m.GetKeyframeCount() > 0
}
