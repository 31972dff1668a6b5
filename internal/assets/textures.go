package assets

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/Faultbox/skelmesh/pkg/loader"
	"github.com/Faultbox/skelmesh/pkg/skinned"
)

// Texture is a resolved texture file. Only the image header is decoded;
// pixel data is left to the consumer.
type Texture struct {
	Requested string // path the model asked for
	Resolved  string // file found on disk
	Size      int64

	// Zero when the header could not be decoded.
	Width, Height int
	Format        string
}

// Path returns the resolved file path.
func (t *Texture) Path() string { return t.Resolved }

// TextureCache resolves texture paths through a Manager and remembers the
// results. It implements loader.TextureResolver and is safe for
// concurrent use.
type TextureCache struct {
	files *Manager
	log   *zap.Logger

	mu   sync.RWMutex
	data map[string]*Texture

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTextureCache creates a cache resolving through files.
func NewTextureCache(files *Manager, log *zap.Logger) *TextureCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureCache{
		files: files,
		log:   log,
		data:  make(map[string]*Texture),
	}
}

// ResolveTexture returns the cached texture for path, resolving it on
// first use.
func (c *TextureCache) ResolveTexture(path string) (skinned.Texture, error) {
	key := filepath.Clean(path)

	c.mu.RLock()
	tex, ok := c.data[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return tex, nil
	}
	c.misses.Add(1)

	f, err := c.files.Open(key)
	if err != nil {
		return nil, errors.Wrap(err, "resolving texture")
	}
	tex = &Texture{Requested: path, Resolved: f.Name(), Size: f.Size()}
	c.readHeader(tex, f)

	c.mu.Lock()
	if existing, ok := c.data[key]; ok {
		tex = existing // another goroutine won the race
	} else {
		c.data[key] = tex
	}
	c.mu.Unlock()

	c.log.Debug("texture resolved",
		zap.String("texture", path),
		zap.String("path", tex.Resolved),
		zap.Int64("bytes", tex.Size),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return tex, nil
}

// readHeader fills in the image dimensions of tex. Undecodable images are
// still usable as paths, so failures are only logged.
func (c *TextureCache) readHeader(tex *Texture, f loader.File) {
	data, err := f.ReadAll()
	if err != nil {
		c.log.Debug("texture unreadable", zap.String("path", tex.Resolved), zap.Error(err))
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.log.Debug("texture header not decoded", zap.String("path", tex.Resolved), zap.Error(err))
		return
	}
	tex.Width, tex.Height, tex.Format = cfg.Width, cfg.Height, format
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear drops every cached texture and resets the statistics.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]*Texture)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *TextureCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
