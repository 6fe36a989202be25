// Package dispcache keeps the per-buffer cache of display-space byte
// buffers, keyed by (view, display) and validated against the settings
// that produced them.
package dispcache

import (
	"sync"

	"github.com/gogpu/colormanage/curve"
	"github.com/gogpu/colormanage/imbuf"
	"github.com/gogpu/colormanage/internal/cache"
)

// Key selects a cached display buffer by 1-based catalog indices.
type Key struct {
	View    int
	Display int
}

// Snapshot is every setting besides the key that affects display output.
// A cached buffer is valid only for an identical snapshot.
type Snapshot struct {
	Look     int
	Exposure float32
	Gamma    float32
	Dither   float32
	Flags    uint32

	Curve         *curve.Mapping
	CurveRevision uint64
}

// Entry is a cached 4-channel display buffer.
type Entry struct {
	Pixels []byte
	Snapshot
}

// Handle pins a cached entry until released.
type Handle = cache.Handle[*Entry]

// Layout is the catalog shape a buffer's state was built for.
type Layout struct {
	Generation uint64
	Displays   int
	Views      int
}

// State is the cache data attached to one buffer.
type State struct {
	layout Layout
	flags  *Flags
	store  *cache.Store[Key, *Entry]
}

// Flags returns the validity bitmap.
func (s *State) Flags() *Flags { return s.flags }

// Len returns the number of cached entries.
func (s *State) Len() int { return s.store.Len() }

// Cache coordinates display buffer caching for all buffers of a manager.
//
// Lookups, inserts and flag changes must happen between Lock and Unlock.
// Release and Free take the lock themselves.
type Cache struct {
	mu  sync.Mutex
	lim *cache.Limiter
}

// New creates a cache accounting every entry against lim.
func New(lim *cache.Limiter) *Cache {
	return &Cache{lim: lim}
}

// Lock acquires the cache lock.
func (c *Cache) Lock() { c.mu.Lock() }

// Unlock releases the cache lock.
func (c *Cache) Unlock() { c.mu.Unlock() }

func entrySize(e *Entry) int64 { return int64(len(e.Pixels)) }

func freeEntry(e *Entry) { e.Pixels = nil }

// State returns the state of buf for layout, or nil if none exists.
// State built for another layout is discarded. Caller must hold the lock.
func (c *Cache) State(buf *imbuf.Buffer, layout Layout) *State {
	st, _ := buf.CacheSlot().(*State)
	if st == nil {
		return nil
	}
	if st.layout != layout {
		st.store.Free()
		buf.SetCacheSlot(nil)
		return nil
	}
	return st
}

// EnsureState returns the state of buf, creating it when missing.
// Caller must hold the lock.
func (c *Cache) EnsureState(buf *imbuf.Buffer, layout Layout) *State {
	if st := c.State(buf, layout); st != nil {
		return st
	}
	st := &State{
		layout: layout,
		flags:  NewFlags(layout.Displays, layout.Views),
		store:  cache.NewStore[Key, *Entry](c.lim, entrySize, freeEntry),
	}
	buf.SetCacheSlot(st)
	return st
}

// Get returns the cached entry for key if its flag is set and it was made
// with snap. A stale entry is dropped. Caller must hold the lock.
func (c *Cache) Get(buf *imbuf.Buffer, layout Layout, key Key, snap Snapshot) (*Handle, bool) {
	st := c.State(buf, layout)
	if st == nil || st.flags == nil || !st.flags.IsSet(key.Display, key.View) {
		return nil, false
	}
	h, ok := st.store.Get(key)
	if !ok {
		return nil, false
	}
	if h.Value().Snapshot != snap {
		h.Release()
		st.store.Remove(key)
		return nil, false
	}
	return h, true
}

// Put stores pixels for key and marks the key valid. The returned handle
// holds the only reference. Caller must hold the lock.
func (c *Cache) Put(buf *imbuf.Buffer, layout Layout, key Key, snap Snapshot, pixels []byte) *Handle {
	st := c.EnsureState(buf, layout)
	if st.flags != nil {
		st.flags.Set(key.Display, key.View)
	}
	return st.store.Put(key, &Entry{Pixels: pixels, Snapshot: snap})
}

// InvalidateAll clears every validity flag of buf. Entries stay cached
// until replaced or evicted. Caller must hold the lock.
func (c *Cache) InvalidateAll(buf *imbuf.Buffer) {
	if st, _ := buf.CacheSlot().(*State); st != nil && st.flags != nil {
		st.flags.Clear()
	}
}

// Release unpins a handle returned by Get or Put. A nil handle is ignored.
func (c *Cache) Release(h *Handle) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	h.Release()
}

// Free drops every cached entry and flag of buf. Pinned entries are freed
// by their last release.
func (c *Cache) Free(buf *imbuf.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, _ := buf.TakeCacheSlot().(*State); st != nil {
		st.store.Free()
	}
}

// Limiter returns the memory budget entries are accounted against.
func (c *Cache) Limiter() *cache.Limiter { return c.lim }
