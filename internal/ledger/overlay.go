package ledger

import (
	"sync"

	"vacationtrail/internal/models"
)

// Overlay is the optimistic view of attempt writes that have been issued but
// not yet confirmed against the store. It is keyed to a single player at a
// time; switching players wipes it so one player's optimistic state can
// never leak into another's view.
type Overlay struct {
	mu       sync.Mutex
	username string
	attempts map[int]models.Attempt
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{attempts: make(map[int]models.Attempt)}
}

// Put records an optimistic attempt for the given player, wiping the overlay
// first if it belonged to someone else.
func (o *Overlay) Put(username string, day int, attempt models.Attempt) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.switchTo(username)
	o.attempts[day] = attempt
}

// Merge combines the stored attempts with the overlay. The merge is additive:
// overlay entries fill in days the server doesn't know yet, but a stored
// entry always wins over an optimistic one. Merging for a different player
// wipes the overlay and returns the stored map untouched.
func (o *Overlay) Merge(username string, stored map[int]models.Attempt) map[int]models.Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.switchTo(username)

	merged := make(map[int]models.Attempt, len(stored)+len(o.attempts))
	for day, a := range o.attempts {
		merged[day] = a
	}
	for day, a := range stored {
		merged[day] = a
		// The server has caught up; the optimistic entry is obsolete.
		delete(o.attempts, day)
	}
	return merged
}

// Clear drops all optimistic entries.
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.username = ""
	o.attempts = make(map[int]models.Attempt)
}

// switchTo wipes the overlay when the active player changes. Caller holds mu.
func (o *Overlay) switchTo(username string) {
	if o.username != username {
		o.username = username
		o.attempts = make(map[int]models.Attempt)
	}
}
