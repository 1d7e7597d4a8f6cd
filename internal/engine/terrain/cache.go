package terrain

import (
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/logger"
)

type cacheEntry struct {
	mesh *Mesh
	used bool
}

// Cache holds built terrain meshes keyed by descriptor value. Entries are
// marked on lookup and swept at frame end; an entry no terrain instance
// referenced during the frame is destroyed.
type Cache struct {
	entries map[Descriptor]*cacheEntry
}

// NewCache creates an empty terrain cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Descriptor]*cacheEntry)}
}

// Lookup returns the cached mesh for a descriptor and refreshes its in-use
// marker for the current frame.
func (c *Cache) Lookup(desc Descriptor) (*Mesh, bool) {
	e, ok := c.entries[desc]
	if !ok {
		return nil, false
	}
	e.used = true
	return e.mesh, true
}

// Store caches a freshly built mesh, marked as used this frame.
func (c *Cache) Store(desc Descriptor, mesh *Mesh) {
	c.entries[desc] = &cacheEntry{mesh: mesh, used: true}
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Sweep destroys every entry that was not looked up since the previous sweep
// and clears all markers. destroy releases the mesh's GPU buffers; it may be
// nil when running headless.
func (c *Cache) Sweep(destroy func(*Mesh)) {
	for desc, e := range c.entries {
		if !e.used {
			logger.Debug("evicting unused terrain geometry",
				zap.String("height_ref", desc.HeightRef), zap.Int("segments", desc.Segments))
			if destroy != nil {
				destroy(e.mesh)
			}
			delete(c.entries, desc)
			continue
		}
		e.used = false
	}
}

// Clear destroys everything, regardless of markers.
func (c *Cache) Clear(destroy func(*Mesh)) {
	for desc, e := range c.entries {
		if destroy != nil {
			destroy(e.mesh)
		}
		delete(c.entries, desc)
	}
}
