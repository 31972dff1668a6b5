// Package assets reads model files from disk and resolves the textures
// they reference.
package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/Faultbox/skelmesh/pkg/loader"
)

// ErrNotFound is returned when no search directory holds a file.
var ErrNotFound = errors.New("asset not found")

// DiskFile is a model file on disk. It implements loader.File.
type DiskFile struct {
	path string
	size int64
}

// Name returns the path the file was opened with.
func (f *DiskFile) Name() string { return f.path }

// Size returns the size reported when the file was opened.
func (f *DiskFile) Size() int64 { return f.size }

// ReadAll reads the whole file.
func (f *DiskFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.path)
	}
	return data, nil
}

// OpenFile stats path and returns it as a loader.File.
func OpenFile(path string) (loader.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if info.IsDir() {
		return nil, errors.Errorf("opening %s: is a directory", path)
	}
	return &DiskFile{path: path, size: info.Size()}, nil
}

// Manager opens files relative to a list of search directories.
type Manager struct {
	dirs []string
	mu   sync.RWMutex
}

// NewManager creates a manager searching dirs in order.
func NewManager(dirs ...string) *Manager {
	return &Manager{dirs: append([]string(nil), dirs...)}
}

// AddDir appends a search directory. Directories are searched in the
// order they were added.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// Dirs returns a copy of the search directories.
func (m *Manager) Dirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.dirs...)
}

// Open opens name directly when it exists, otherwise the first match of
// its base name in the search directories.
func (m *Manager) Open(name string) (loader.File, error) {
	path, err := m.Find(name)
	if err != nil {
		return nil, err
	}
	return OpenFile(path)
}

// Find returns the path Open would use for name.
func (m *Manager) Find(name string) (string, error) {
	if isFile(name) {
		return name, nil
	}
	base := filepath.Base(name)
	for _, dir := range m.Dirs() {
		candidate := filepath.Join(dir, base)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s", name)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
