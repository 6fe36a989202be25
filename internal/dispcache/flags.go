package dispcache

import (
	"math/bits"
	"sync/atomic"
)

// Flags records which (display, view) pairs of a buffer have a valid
// cached display buffer, using an atomic bitmap.
//
// The bitmap uses one bit per pair, packed into uint64 words.
// Bit index = (display-1) * views + (view-1). Displays and views are
// 1-based catalog indices.
//
// All methods are safe for concurrent use without external synchronization.
type Flags struct {
	words    []atomic.Uint64
	displays int
	views    int
}

// NewFlags creates a bitmap for the given catalog dimensions.
// All pairs start unset. Returns nil if dimensions are invalid.
func NewFlags(displays, views int) *Flags {
	if displays <= 0 || views <= 0 {
		return nil
	}
	total := displays * views
	return &Flags{
		words:    make([]atomic.Uint64, (total+63)/64),
		displays: displays,
		views:    views,
	}
}

func (f *Flags) bit(display, view int) (word int, mask uint64, ok bool) {
	if display < 1 || display > f.displays || view < 1 || view > f.views {
		return 0, 0, false
	}
	idx := (display-1)*f.views + (view - 1)
	return idx / 64, 1 << (idx & 63), true
}

// Set marks the pair valid. Out of range pairs are ignored.
func (f *Flags) Set(display, view int) {
	if w, m, ok := f.bit(display, view); ok {
		f.words[w].Or(m)
	}
}

// IsSet reports whether the pair is valid. Out of range pairs report false.
func (f *Flags) IsSet(display, view int) bool {
	w, m, ok := f.bit(display, view)
	return ok && f.words[w].Load()&m != 0
}

// Clear marks every pair invalid. Clear on nil flags is a no-op.
func (f *Flags) Clear() {
	if f == nil {
		return
	}
	for i := range f.words {
		f.words[i].Store(0)
	}
}

// Only marks the pair valid and every other pair invalid. Callers must
// serialize Only with Set.
func (f *Flags) Only(display, view int) {
	w, m, ok := f.bit(display, view)
	for i := range f.words {
		if ok && i == w {
			f.words[i].Store(m)
			continue
		}
		f.words[i].Store(0)
	}
}

// IsEmpty returns true if no pair is valid.
func (f *Flags) IsEmpty() bool {
	for i := range f.words {
		if f.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of valid pairs.
func (f *Flags) Count() int {
	count := 0
	for i := range f.words {
		count += bits.OnesCount64(f.words[i].Load())
	}
	return count
}

// Displays returns the number of displays the bitmap covers.
func (f *Flags) Displays() int { return f.displays }

// Views returns the number of views the bitmap covers.
func (f *Flags) Views() int { return f.views }
