package cache

// recency orders entry headers from most to least recently used.
//
// The list is intrusive: links live in the headers themselves, and root is
// a sentinel whose next is the newest entry and whose prev is the oldest.
// A header is on the list exactly when its links are non-nil.
// Callers must hold the Limiter mutex.
type recency struct {
	root header
	n    int
}

func (r *recency) lazyInit() {
	if r.root.next == nil {
		r.root.next = &r.root
		r.root.prev = &r.root
	}
}

func (r *recency) len() int { return r.n }

func (r *recency) insertAfter(h, at *header) {
	h.prev = at
	h.next = at.next
	at.next.prev = h
	at.next = h
}

// touch puts h at the front, adding it if needed.
func (r *recency) touch(h *header) {
	r.lazyInit()
	if h.linked() {
		if r.root.next == h {
			return
		}
		r.cut(h)
	}
	r.insertAfter(h, &r.root)
	r.n++
}

// drop takes h off the list. It is a no-op for unlinked headers.
func (r *recency) drop(h *header) {
	if h.linked() {
		r.cut(h)
	}
}

func (r *recency) cut(h *header) {
	h.prev.next = h.next
	h.next.prev = h.prev
	h.prev, h.next = nil, nil
	r.n--
}

// oldest returns the least recently used header, or nil.
func (r *recency) oldest() *header {
	if r.n == 0 {
		return nil
	}
	return r.root.prev
}

// newer returns the header used just after h, or nil at the front.
func (r *recency) newer(h *header) *header {
	if h.prev == &r.root {
		return nil
	}
	return h.prev
}

func (h *header) linked() bool { return h.next != nil }
