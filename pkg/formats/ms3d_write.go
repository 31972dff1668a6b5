package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMS3DTooLarge is returned when a record count does not fit the
// format's 16-bit counters.
var ErrMS3DTooLarge = errors.New("MS3D record count exceeds 65535")

// MarshalBinary encodes the model in the MS3D layout read by ParseMS3D.
// Strings longer than their fixed field are truncated; Issues are not
// written.
func (m *MS3D) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	w := func(v any) {
		// bytes.Buffer writes cannot fail.
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	count := func(n int, what string) error {
		if n > math.MaxUint16 {
			return fmt.Errorf("%w: %d %s", ErrMS3DTooLarge, n, what)
		}
		w(uint16(n))
		return nil
	}

	buf.WriteString(MS3DMagic)
	version := m.Version
	if version == 0 {
		version = MS3DMaxVersion
	}
	w(version)

	if err := count(len(m.Vertices), "vertices"); err != nil {
		return nil, err
	}
	for _, v := range m.Vertices {
		w(v.Flags)
		w(v.Position)
		w(v.BoneID)
		w(v.RefCount)
	}

	if err := count(len(m.Triangles), "triangles"); err != nil {
		return nil, err
	}
	for _, tri := range m.Triangles {
		w(tri.Flags)
		w(tri.VertexIndices)
		w(tri.Normals)
		w(tri.S)
		w(tri.T)
		w(tri.SmoothingGroup)
		w(tri.GroupIndex)
	}

	if err := count(len(m.Groups), "groups"); err != nil {
		return nil, err
	}
	for _, g := range m.Groups {
		w(g.Flags)
		writeFixedString(&buf, g.Name, ms3dNameLength)
		if err := count(len(g.TriangleIndices), "group triangle ids"); err != nil {
			return nil, err
		}
		w(g.TriangleIndices)
		w(g.MaterialIndex)
	}

	if err := count(len(m.Materials), "materials"); err != nil {
		return nil, err
	}
	for _, mat := range m.Materials {
		writeFixedString(&buf, mat.Name, ms3dNameLength)
		w(mat.Ambient)
		w(mat.Diffuse)
		w(mat.Specular)
		w(mat.Emissive)
		w(mat.Shininess)
		w(mat.Transparency)
		w(mat.Mode)
		writeFixedString(&buf, mat.Texture, ms3dPathLength)
		writeFixedString(&buf, mat.AlphaMap, ms3dPathLength)
	}

	w(m.FramesPerSecond)
	w(m.CurrentTime)
	w(m.FrameCount)

	if err := count(len(m.Joints), "joints"); err != nil {
		return nil, err
	}
	for _, j := range m.Joints {
		w(j.Flags)
		writeFixedString(&buf, j.Name, ms3dNameLength)
		writeFixedString(&buf, j.ParentName, ms3dNameLength)
		w(j.Rotation)
		w(j.Translation)
		if err := count(len(j.RotationKeys), "rotation keys"); err != nil {
			return nil, err
		}
		if err := count(len(j.TranslationKeys), "translation keys"); err != nil {
			return nil, err
		}
		for _, k := range j.RotationKeys {
			w(k.Time)
			w(k.Parameter)
		}
		for _, k := range j.TranslationKeys {
			w(k.Time)
			w(k.Parameter)
		}
	}
	return buf.Bytes(), nil
}

// writeFixedString writes s into a zero-padded field of length bytes,
// keeping room for the terminator.
func writeFixedString(buf *bytes.Buffer, s string, length int) {
	field := make([]byte, length)
	copy(field[:length-1], s)
	buf.Write(field)
}
