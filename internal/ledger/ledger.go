package ledger

import (
	"errors"
	"fmt"
	"time"

	"vacationtrail/internal/models"
)

// ErrOutcomeLocked is returned when a write would change an already terminal
// outcome without override privileges.
var ErrOutcomeLocked = errors.New("attempt outcome is already final")

// AttemptStore persists per-player per-day attempt records.
type AttemptStore interface {
	GetAttempt(username string, day int) (*models.Attempt, error)
	PutAttempt(username string, day int, attempt models.Attempt) error
}

// Ledger enforces the attempt write rules: recording is idempotent, terminal
// outcomes are sticky, and only an override may rewrite them. A PENDING
// record may always resolve to a terminal outcome.
type Ledger struct {
	store AttemptStore
}

// New creates a ledger over the given store.
func New(store AttemptStore) *Ledger {
	return &Ledger{store: store}
}

// Record writes an attempt outcome for a player and day. It returns the
// stored attempt and whether the write changed anything. Re-recording the
// same status is a no-op, not an error.
func (l *Ledger) Record(username string, day int, status models.AttemptStatus, override bool) (models.Attempt, bool, error) {
	existing, err := l.store.GetAttempt(username, day)
	if err != nil {
		return models.Attempt{}, false, fmt.Errorf("failed to load attempt for %s day %d: %w", username, day, err)
	}

	if existing != nil {
		if existing.Status == status {
			return *existing, false, nil
		}
		if existing.Status.Terminal() && !override {
			return *existing, false, ErrOutcomeLocked
		}
	}

	attempt := models.Attempt{Status: status, RecordedAt: time.Now()}
	if err := l.store.PutAttempt(username, day, attempt); err != nil {
		return models.Attempt{}, false, fmt.Errorf("failed to record attempt for %s day %d: %w", username, day, err)
	}
	return attempt, true, nil
}

// Resolve upgrades a PENDING attempt to a terminal outcome. Unlike Record it
// refuses to create a record that was never pending.
func (l *Ledger) Resolve(username string, day int, status models.AttemptStatus) (models.Attempt, error) {
	if !status.Terminal() {
		return models.Attempt{}, fmt.Errorf("resolve requires a terminal status, got %q", status)
	}
	existing, err := l.store.GetAttempt(username, day)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("failed to load attempt for %s day %d: %w", username, day, err)
	}
	if existing == nil {
		return models.Attempt{}, fmt.Errorf("no pending attempt for %s day %d", username, day)
	}
	if existing.Status.Terminal() {
		return *existing, nil
	}

	attempt := models.Attempt{Status: status, RecordedAt: time.Now()}
	if err := l.store.PutAttempt(username, day, attempt); err != nil {
		return models.Attempt{}, fmt.Errorf("failed to resolve attempt for %s day %d: %w", username, day, err)
	}
	return attempt, nil
}

// Get returns the stored attempt for a player and day, if any.
func (l *Ledger) Get(username string, day int) (*models.Attempt, error) {
	return l.store.GetAttempt(username, day)
}
