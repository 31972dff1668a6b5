// Package loader assembles skinned meshes from decoded model files.
package loader

import (
	"fmt"

	"github.com/Faultbox/skelmesh/pkg/formats"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// File is a readable model source.
type File interface {
	Name() string
	Size() int64 // -1 when unknown
	ReadAll() ([]byte, error)
}

// TextureResolver turns a texture path into a texture handle. Paths are
// already joined with the model's directory.
type TextureResolver interface {
	ResolveTexture(path string) (skinned.Texture, error)
}

// Result is a loaded mesh together with the inconsistencies repaired
// while building it.
type Result struct {
	Mesh   *skinned.Mesh
	Issues []formats.Issue

	// Model holds the decoded records the mesh was built from.
	Model *formats.MS3D
}

type memFile struct {
	name string
	data []byte
}

// NewMemoryFile wraps data as a File.
func NewMemoryFile(name string, data []byte) File {
	return &memFile{name: name, data: data}
}

func (f *memFile) Name() string             { return f.name }
func (f *memFile) Size() int64              { return int64(len(f.data)) }
func (f *memFile) ReadAll() ([]byte, error) { return f.data, nil }

// readFile reads the whole of f and checks the length against its size.
func readFile(f File) ([]byte, error) {
	data, err := f.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", formats.ErrIO, f.Name(), err)
	}
	if size := f.Size(); size >= 0 && int64(len(data)) != size {
		return nil, fmt.Errorf("%w: short read of %s: got %d of %d bytes", formats.ErrIO, f.Name(), len(data), size)
	}
	return data, nil
}
