// Package cache provides a memory-budgeted, reference-counted cache.
//
// A single Limiter holds the byte budget for any number of Stores. Each
// Store maps keys to values and accounts every value against the shared
// budget, so buffers with their own stores still compete for one pool of
// memory.
//
//	lim := cache.NewLimiter(256 << 20)
//	store := cache.NewStore[int, []byte](lim, func(b []byte) int64 { return int64(len(b)) }, nil)
//	h := store.Put(1, make([]byte, 1024))
//	defer h.Release()
//
// # Pinning
//
// Get and Put return a Handle. While any handle of an entry is live the
// entry is pinned: it is never evicted, and removing it only hides it
// from lookups until the last handle is released. Unpinned entries are
// evicted least recently used first whenever the budget is exceeded.
//
// # Thread Safety
//
// Limiter, Store and Handle are safe for concurrent use. A Limiter and all
// of its stores share one mutex. None of them should be copied after
// creation.
package cache
