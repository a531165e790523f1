package runtime

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"vacationtrail/internal/engine"
	"vacationtrail/internal/models"
)

// Phase is where an attempt session sits in its lifecycle.
type Phase string

const (
	// PhaseAwaitingStart shows instructions until the player explicitly
	// starts; the clock is not running yet.
	PhaseAwaitingStart Phase = "AWAITING_START"
	// PhaseActive accepts input and runs the clock.
	PhaseActive Phase = "ACTIVE"
	// PhaseResolving is the short window after a terminal verdict in which
	// the result is shown and all input is ignored.
	PhaseResolving Phase = "RESOLVING"
	// PhaseClosed is the end state.
	PhaseClosed Phase = "CLOSED"
)

// resolveWindow is how long a finished attempt lingers in PhaseResolving.
const resolveWindow = 2500 * time.Millisecond

var (
	ErrBusy      = errors.New("verification in progress")
	ErrNotActive = errors.New("session is not accepting input")
)

// Session is one player's live attempt at one challenge day. All access goes
// through Runtime methods, which serialize on the session mutex.
type Session struct {
	mu sync.Mutex

	Username  string
	Day       int
	Challenge *models.Challenge

	eng   engine.Engine
	state *engine.State

	phase     Phase
	clock     engine.Countdown
	resolveAt time.Time

	outcome        engine.Outcome
	outcomeEmitted bool

	// busy blocks input while an oracle round trip is in flight.
	busy bool

	// autoSubmitDue is set once when the category-word clock expires; the
	// service reacts by submitting whatever answers exist.
	autoSubmitDue   bool
	autoSubmitFired bool

	createdAt   time.Time
	lastTouched time.Time
}

// Snapshot is the client-visible view of a session.
type Snapshot struct {
	Username  string               `json:"username"`
	Day       int                  `json:"day"`
	Kind      models.ChallengeKind `json:"kind"`
	Phase     Phase                `json:"phase"`
	Outcome   engine.Outcome       `json:"outcome,omitempty"`
	Remaining float64              `json:"remainingSeconds"`
	State     *engine.State        `json:"state,omitempty"`
}

// Runtime owns attempt sessions and drives their state machines.
type Runtime struct {
	store *Store
	now   func() time.Time
}

// New creates a runtime with a live session store.
func New() *Runtime {
	return &Runtime{store: NewStore(), now: time.Now}
}

// NewWithClock creates a runtime with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Runtime {
	return &Runtime{store: NewStore(), now: now}
}

// Store exposes the session store for lifecycle management (pruning).
func (rt *Runtime) Store() *Store {
	return rt.store
}

// Open creates (or replaces) the session for a player and challenge.
// Challenges with a manual start wait in PhaseAwaitingStart; everything else
// goes active immediately with the clock running.
func (rt *Runtime) Open(username string, ch *models.Challenge) (*Session, error) {
	s := &Session{
		Username:    username,
		Day:         ch.Day,
		Challenge:   ch,
		createdAt:   rt.now(),
		lastTouched: rt.now(),
	}

	if eng, err := engine.Lookup(ch.Kind); err == nil {
		s.eng = eng
		state, err := eng.Init(ch)
		if err != nil {
			return nil, fmt.Errorf("failed to init %s engine: %w", ch.Kind, err)
		}
		s.state = state
	}

	if ch.NeedsManualStart() {
		s.phase = PhaseAwaitingStart
	} else {
		s.phase = PhaseActive
		s.clock = engine.StartCountdown(ch.EffectiveTimeLimit(), rt.now())
	}

	rt.store.Put(s)
	return s, nil
}

// Get returns the live session for a player and day.
func (rt *Runtime) Get(username string, day int) (*Session, bool) {
	return rt.store.Get(username, day)
}

// Start moves a waiting session to active and starts its clock.
func (rt *Runtime) Start(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingStart {
		return fmt.Errorf("cannot start session in phase %s", s.phase)
	}
	s.phase = PhaseActive
	s.clock = engine.StartCountdown(s.Challenge.EffectiveTimeLimit(), rt.now())
	s.lastTouched = rt.now()
	return nil
}

// Advance applies one batch of input to an active session and runs the state
// machine forward. Input during verification, resolving, or after close is
// rejected.
func (rt *Runtime) Advance(s *Session, in engine.Input, dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt.step(s)
	if s.busy {
		return ErrBusy
	}
	if s.phase != PhaseActive {
		return ErrNotActive
	}

	if s.eng != nil {
		s.eng.Tick(s.state, in, dt)
		if outcome := s.eng.Terminal(s.state); outcome != engine.OutcomeNone {
			rt.beginResolve(s, outcome)
		}
	}
	s.lastTouched = rt.now()
	return nil
}

// Finish force-terminates an active or waiting session with the given
// outcome. Used for oracle-verified kinds that have no engine, and for the
// photo challenges' trust-based win.
func (rt *Runtime) Finish(s *Session, outcome engine.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt.step(s)
	if s.phase == PhaseResolving || s.phase == PhaseClosed {
		return ErrNotActive
	}
	rt.beginResolve(s, outcome)
	return nil
}

// Abandon closes a session that never reached a verdict. Walking away is a
// loss, except for the privileged test account which may abandon freely.
func (rt *Runtime) Abandon(s *Session, privileged bool) engine.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt.step(s)
	if s.phase == PhaseResolving || s.phase == PhaseClosed {
		return s.outcome
	}
	if privileged {
		s.phase = PhaseClosed
		return engine.OutcomeNone
	}
	rt.beginResolve(s, engine.OutcomeLoss)
	return engine.OutcomeLoss
}

// BeginVerify marks the session busy for an oracle round trip. Further input
// is rejected until EndVerify.
func (rt *Runtime) BeginVerify(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.step(s)
	if s.phase != PhaseActive {
		return ErrNotActive
	}
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

// EndVerify releases the verification lock.
func (rt *Runtime) EndVerify(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// ConsumeOutcome returns the terminal outcome exactly once. Later calls
// report that the outcome was already emitted.
func (rt *Runtime) ConsumeOutcome(s *Session) (engine.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt.step(s)
	if s.outcome == engine.OutcomeNone || s.outcomeEmitted {
		return engine.OutcomeNone, false
	}
	s.outcomeEmitted = true
	return s.outcome, true
}

// AutoSubmitDue reports (and clears) the category-word expiry flag.
func (rt *Runtime) AutoSubmitDue(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.step(s)
	due := s.autoSubmitDue
	s.autoSubmitDue = false
	return due
}

// View returns the current client-visible snapshot, applying any clock
// expiry that happened since the last touch.
func (rt *Runtime) View(s *Session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt.step(s)
	return Snapshot{
		Username:  s.Username,
		Day:       s.Day,
		Kind:      s.Challenge.Kind,
		Phase:     s.phase,
		Outcome:   s.outcome,
		Remaining: s.clock.Remaining(rt.now()).Seconds(),
		State:     s.state,
	}
}

// Close removes the session from the store.
func (rt *Runtime) Close(s *Session) {
	rt.store.Delete(s.Username, s.Day)
}

// step advances time-driven transitions: clock expiry while active, and the
// resolving window elapsing. Caller holds s.mu.
func (rt *Runtime) step(s *Session) {
	now := rt.now()

	if s.phase == PhaseResolving && now.After(s.resolveAt) {
		s.phase = PhaseClosed
	}

	if s.phase != PhaseActive || !s.clock.Expired(now) {
		return
	}

	switch {
	case s.Challenge.Kind == models.KindSequentialQuiz:
		// Out of time: the quiz ends where it stands and the partial
		// score decides the verdict.
		if q, ok := s.eng.(*engine.QuizEngine); ok {
			q.ForceFinish(s.state)
			rt.beginResolve(s, q.Terminal(s.state))
		}
	case s.Challenge.Kind == models.KindCategoryWord:
		if !s.autoSubmitFired {
			s.autoSubmitFired = true
			s.autoSubmitDue = true
		}
	case s.Challenge.TimerForcesLoss():
		rt.beginResolve(s, engine.OutcomeLoss)
	default:
		// Display-only timers (scavenger hunt) expire silently.
	}
}

// beginResolve records the verdict and opens the resolving window. Caller
// holds s.mu.
func (rt *Runtime) beginResolve(s *Session, outcome engine.Outcome) {
	s.outcome = outcome
	s.phase = PhaseResolving
	s.resolveAt = rt.now().Add(resolveWindow)
}
