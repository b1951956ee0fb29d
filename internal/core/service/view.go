package service

import "sync"

// View guards a rendered view against stale responses. Each load takes a
// ticket from Begin; a result is applied only if no newer load started and
// the view was not closed in the meantime.
type View struct {
	mu         sync.Mutex
	generation uint64
	closed     bool
}

// Ticket identifies one load of a View.
type Ticket uint64

// Begin starts a new load and invalidates every earlier ticket.
func (v *View) Begin() Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return Ticket(v.generation)
}

// Commit runs apply when t is still the current ticket and reports whether it
// did. apply runs under the view's lock so it cannot race with Close.
func (v *View) Commit(t Ticket, apply func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || uint64(t) != v.generation {
		return false
	}
	apply()
	return true
}

// Close discards every outstanding load, as when the user navigates away.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}
