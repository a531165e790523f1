package ledger

import (
	"errors"
	"testing"

	"vacationtrail/internal/models"
)

type memStore struct {
	attempts map[string]map[int]models.Attempt
}

func newMemStore() *memStore {
	return &memStore{attempts: make(map[string]map[int]models.Attempt)}
}

func (m *memStore) GetAttempt(username string, day int) (*models.Attempt, error) {
	if byDay, ok := m.attempts[username]; ok {
		if a, ok := byDay[day]; ok {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memStore) PutAttempt(username string, day int, attempt models.Attempt) error {
	if m.attempts[username] == nil {
		m.attempts[username] = make(map[int]models.Attempt)
	}
	m.attempts[username][day] = attempt
	return nil
}

func TestRecordFirstOutcome(t *testing.T) {
	l := New(newMemStore())

	attempt, changed, err := l.Record("maria", 3, models.AttemptWin, false)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !changed {
		t.Error("first record should report a change")
	}
	if attempt.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN", attempt.Status)
	}
}

func TestRecordIdempotent(t *testing.T) {
	l := New(newMemStore())

	if _, _, err := l.Record("maria", 3, models.AttemptWin, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	attempt, changed, err := l.Record("maria", 3, models.AttemptWin, false)
	if err != nil {
		t.Fatalf("re-Record() error = %v", err)
	}
	if changed {
		t.Error("re-recording the same status should be a no-op")
	}
	if attempt.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN", attempt.Status)
	}
}

func TestRecordTerminalIsSticky(t *testing.T) {
	l := New(newMemStore())

	if _, _, err := l.Record("maria", 3, models.AttemptWin, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_, _, err := l.Record("maria", 3, models.AttemptLoss, false)
	if !errors.Is(err, ErrOutcomeLocked) {
		t.Errorf("Record() error = %v, want ErrOutcomeLocked", err)
	}

	// The stored record is untouched.
	got, err := l.Get("maria", 3)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN preserved", got.Status)
	}
}

func TestRecordOverride(t *testing.T) {
	l := New(newMemStore())

	if _, _, err := l.Record("maria", 3, models.AttemptLoss, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	attempt, changed, err := l.Record("maria", 3, models.AttemptWin, true)
	if err != nil {
		t.Fatalf("Record() with override error = %v", err)
	}
	if !changed {
		t.Error("override should change the record")
	}
	if attempt.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN", attempt.Status)
	}
}

func TestResolvePending(t *testing.T) {
	l := New(newMemStore())

	if _, _, err := l.Record("maria", 5, models.AttemptPending, false); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	attempt, err := l.Resolve("maria", 5, models.AttemptWin)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if attempt.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN", attempt.Status)
	}

	// Resolving again keeps the terminal outcome.
	attempt, err = l.Resolve("maria", 5, models.AttemptLoss)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if attempt.Status != models.AttemptWin {
		t.Errorf("status = %v, want WIN kept on re-resolve", attempt.Status)
	}
}

func TestResolveRequiresExistingRecord(t *testing.T) {
	l := New(newMemStore())

	if _, err := l.Resolve("maria", 9, models.AttemptWin); err == nil {
		t.Error("Resolve() without a pending record should fail")
	}
	if _, err := l.Resolve("maria", 9, models.AttemptPending); err == nil {
		t.Error("Resolve() to PENDING should fail")
	}
}

func TestOverlayMergeServerWins(t *testing.T) {
	o := NewOverlay()

	o.Put("maria", 2, models.Attempt{Status: models.AttemptWin})
	o.Put("maria", 4, models.Attempt{Status: models.AttemptPending})

	stored := map[int]models.Attempt{
		2: {Status: models.AttemptLoss}, // server disagrees
		1: {Status: models.AttemptWin},
	}
	merged := o.Merge("maria", stored)

	if merged[2].Status != models.AttemptLoss {
		t.Errorf("day 2 = %v, want server value LOSS", merged[2].Status)
	}
	if merged[4].Status != models.AttemptPending {
		t.Errorf("day 4 = %v, want optimistic PENDING", merged[4].Status)
	}
	if merged[1].Status != models.AttemptWin {
		t.Errorf("day 1 = %v, want stored WIN", merged[1].Status)
	}
}

func TestOverlayConfirmedEntriesDropped(t *testing.T) {
	o := NewOverlay()

	o.Put("maria", 2, models.Attempt{Status: models.AttemptWin})
	o.Merge("maria", map[int]models.Attempt{2: {Status: models.AttemptWin}})

	// The server has confirmed day 2; a later merge without it must not
	// resurrect the optimistic entry.
	merged := o.Merge("maria", map[int]models.Attempt{})
	if _, ok := merged[2]; ok {
		t.Error("confirmed optimistic entry should have been dropped")
	}
}

func TestOverlayWipedOnPlayerSwitch(t *testing.T) {
	o := NewOverlay()

	o.Put("maria", 2, models.Attempt{Status: models.AttemptWin})
	merged := o.Merge("joao", map[int]models.Attempt{})

	if len(merged) != 0 {
		t.Errorf("merged = %v, want empty after player switch", merged)
	}

	// And maria's entry is gone for good.
	merged = o.Merge("maria", map[int]models.Attempt{})
	if len(merged) != 0 {
		t.Error("overlay should have been wiped by the switch")
	}
}
