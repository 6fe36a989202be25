package cache

import "sync"

// Limiter is a memory budget shared by any number of Stores.
//
// When admitted bytes exceed the limit, least recently used entries are
// evicted from whichever store owns them. Entries with live handles are
// pinned and never evicted. A pinned entry removed from its store keeps
// counting against the limit until its last handle is released.
//
// Limiter is safe for concurrent use.
// Limiter must not be copied after creation (has mutex).
type Limiter struct {
	mu        sync.Mutex
	limit     int64
	used      int64
	lru       recency
	evictions uint64
}

// header is the bookkeeping shared by every cached entry.
// All fields are guarded by the owning Limiter's mutex.
type header struct {
	size int64
	refs int

	prev, next *header

	// orphan is set once the entry left its store while pinned. The
	// last Release frees it.
	orphan bool

	detach func()
	free   func()
}

// NewLimiter creates a budget of limit bytes.
// A limit of 0 or less means unlimited.
func NewLimiter(limit int64) *Limiter {
	return &Limiter{limit: limit}
}

// SetLimit changes the budget and evicts down to it.
func (l *Limiter) SetLimit(limit int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limit = limit
	l.enforce()
}

// Limit returns the budget in bytes.
func (l *Limiter) Limit() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

// Used returns the bytes currently admitted.
func (l *Limiter) Used() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Stats returns limiter statistics.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		Len:       l.lru.len(),
		Used:      l.used,
		Limit:     l.limit,
		Evictions: l.evictions,
	}
}

// admit starts accounting for h. Caller must hold l.mu.
func (l *Limiter) admit(h *header) {
	l.used += h.size
	l.lru.touch(h)
}

// forget stops accounting for h. Caller must hold l.mu.
func (l *Limiter) forget(h *header) {
	if !h.linked() {
		return
	}
	l.lru.drop(h)
	l.used -= h.size
}

// enforce evicts unpinned entries, oldest first, until the budget holds.
// Caller must hold l.mu.
func (l *Limiter) enforce() {
	if l.limit <= 0 {
		return
	}
	for h := l.lru.oldest(); h != nil && l.used > l.limit; {
		next := l.lru.newer(h)
		if h.refs == 0 {
			l.forget(h)
			h.detach()
			h.free()
			l.evictions++
		}
		h = next
	}
}

// Store is a keyed set of entries accounted against a Limiter.
//
// Store is safe for concurrent use; it shares its Limiter's mutex.
type Store[K comparable, V any] struct {
	lim    *Limiter
	items  map[K]*item[V]
	sizeOf func(V) int64
	onFree func(V)

	hits   uint64
	misses uint64
}

type item[V any] struct {
	header
	value V
}

// NewStore creates a store accounted against lim.
// sizeOf reports the bytes a value holds. onFree, if non-nil, is called
// exactly once when a value leaves the cache for good; it runs with the
// limiter locked and must not call back into any store of lim.
func NewStore[K comparable, V any](lim *Limiter, sizeOf func(V) int64, onFree func(V)) *Store[K, V] {
	return &Store[K, V]{
		lim:    lim,
		items:  make(map[K]*item[V]),
		sizeOf: sizeOf,
		onFree: onFree,
	}
}

// Get returns a handle to the entry for key, or (nil, false).
// The handle pins the entry until it is released.
func (s *Store[K, V]) Get(key K) (*Handle[V], bool) {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		s.misses++
		return nil, false
	}
	s.hits++
	it.refs++
	s.lim.lru.touch(&it.header)
	return &Handle[V]{it: it, lim: s.lim}, true
}

// Put stores value under key, replacing any previous entry, and returns a
// handle that pins it. Unpinned entries may be evicted to make room.
func (s *Store[K, V]) Put(key K, value V) *Handle[V] {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	if old, ok := s.items[key]; ok {
		s.removeLocked(key, old)
	}

	it := &item[V]{value: value}
	it.size = s.sizeOf(value)
	it.refs = 1
	it.detach = func() {
		if s.items[key] == it {
			delete(s.items, key)
		}
	}
	it.free = func() {
		if s.onFree != nil {
			s.onFree(it.value)
		}
	}
	s.items[key] = it
	s.lim.admit(&it.header)
	s.lim.enforce()

	return &Handle[V]{it: it, lim: s.lim}
}

// Remove drops the entry for key. A pinned entry is freed when its last
// handle is released. Returns true if the entry was found.
func (s *Store[K, V]) Remove(key K) bool {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		return false
	}
	s.removeLocked(key, it)
	return true
}

// Free drops every entry of the store.
func (s *Store[K, V]) Free() {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	for key, it := range s.items {
		s.removeLocked(key, it)
	}
}

// removeLocked drops it from the map. A pinned entry leaves the LRU but
// stays accounted until its last release frees it. Caller must hold
// s.lim.mu.
func (s *Store[K, V]) removeLocked(key K, it *item[V]) {
	delete(s.items, key)
	if it.refs > 0 {
		s.lim.lru.drop(&it.header)
		it.orphan = true
		return
	}
	s.lim.forget(&it.header)
	it.free()
}

// Len returns the number of entries in the store.
func (s *Store[K, V]) Len() int {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	return len(s.items)
}

// Stats returns store statistics.
func (s *Store[K, V]) Stats() Stats {
	s.lim.mu.Lock()
	defer s.lim.mu.Unlock()

	var used int64
	for _, it := range s.items {
		used += it.size
	}
	st := Stats{
		Len:    len(s.items),
		Used:   used,
		Limit:  s.lim.limit,
		Hits:   s.hits,
		Misses: s.misses,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

// Handle pins a cached value.
type Handle[V any] struct {
	it   *item[V]
	lim  *Limiter
	once sync.Once
}

// Value returns the pinned value.
func (h *Handle[V]) Value() V {
	return h.it.value
}

// Release unpins the value. Only the first call has an effect.
// Release on a nil handle is a no-op.
func (h *Handle[V]) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.lim.mu.Lock()
		defer h.lim.mu.Unlock()

		h.it.refs--
		if h.it.refs > 0 {
			return
		}
		if h.it.orphan {
			h.lim.used -= h.it.size
			h.it.free()
			return
		}
		h.lim.enforce()
	})
}

// Shared reports whether another handle pins the same value.
func (h *Handle[V]) Shared() bool {
	h.lim.mu.Lock()
	defer h.lim.mu.Unlock()
	return h.it.refs > 1
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Used is the number of bytes held by the entries.
	Used int64
	// Limit is the budget in bytes, 0 or less when unlimited.
	Limit int64
	// Hits is the number of successful lookups (Store only).
	Hits uint64
	// Misses is the number of failed lookups (Store only).
	Misses uint64
	// HitRate is the hit rate 0.0 to 1.0 (Store only).
	HitRate float64
	// Evictions is the number of entries evicted for space (Limiter only).
	Evictions uint64
}
