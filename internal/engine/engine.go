package engine

import (
	"fmt"
	"math/rand"
	"time"

	"vacationtrail/internal/models"
)

// Outcome is an engine's verdict on its current state.
type Outcome string

const (
	// OutcomeNone means the attempt is still in progress.
	OutcomeNone Outcome = ""
	// OutcomeWin and OutcomeLoss are terminal.
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	// OutcomePending means the attempt finished but awaits human review.
	OutcomePending Outcome = "PENDING"
)

// Input carries one frame of player input plus any verified events produced
// by the answer oracle. Engines never verify answers themselves; discrete
// verdicts arrive here already checked.
type Input struct {
	// Runner
	Flap bool

	// Paddle ball: absolute paddle position, when the client moved it.
	PaddleY *float64

	// Platformer
	Left  bool
	Right bool
	Jump  bool

	// Memory: index of the card the player flipped.
	FlipIndex *int

	// Word guess: the guess with its oracle marks.
	GuessWord   string
	GuessMarks  []models.LetterMark
	GuessSolved bool

	// Quiz: verdict for the currently shown question.
	QuizOption  *int
	QuizCorrect bool

	// Word groups: the attempted selection with its oracle verdict.
	GroupItems   []string
	GroupTitle   string
	GroupCorrect *bool
}

// State is the full mutable state of one running attempt. Exactly one of the
// per-kind sub-states is set, matching Kind.
type State struct {
	Kind models.ChallengeKind `json:"kind"`
	Seed int64                `json:"seed"`

	Runner     *RunnerState     `json:"runner,omitempty"`
	Paddle     *PaddleBallState `json:"paddle,omitempty"`
	Platformer *PlatformerState `json:"platformer,omitempty"`
	Memory     *MemoryState     `json:"memory,omitempty"`
	WordGuess  *WordGuessState  `json:"wordGuess,omitempty"`
	Quiz       *QuizState       `json:"quiz,omitempty"`
	Groups     *GroupsState     `json:"groups,omitempty"`

	rng *rand.Rand
}

// rand returns the state's deterministic random source, derived from Seed so
// a persisted state replays identically.
func (s *State) rand() *rand.Rand {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.Seed))
	}
	return s.rng
}

// Engine is one mini-game runtime. Tick advances the simulation by dt frames
// (one frame is 1/60s); input-driven engines ignore dt. Terminal reports the
// attempt verdict, OutcomeNone while play continues.
type Engine interface {
	Kind() models.ChallengeKind
	Init(ch *models.Challenge) (*State, error)
	Tick(s *State, in Input, dt float64)
	Terminal(s *State) Outcome
}

// registry maps challenge kinds to their engines.
var registry = map[models.ChallengeKind]Engine{}

func register(e Engine) {
	registry[e.Kind()] = e
}

// Lookup returns the engine for a challenge kind.
func Lookup(kind models.ChallengeKind) (Engine, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no engine for challenge kind %q", kind)
	}
	return e, nil
}

// Kinds lists every registered engine kind.
func Kinds() []models.ChallengeKind {
	kinds := make([]models.ChallengeKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}

func init() {
	register(&RunnerEngine{})
	register(&PaddleBallEngine{})
	register(&PlatformerEngine{})
	register(&MemoryEngine{})
	register(&WordGuessEngine{})
	register(&QuizEngine{})
	register(&GroupsEngine{})
}

func newSeed() int64 {
	return time.Now().UnixNano()
}
