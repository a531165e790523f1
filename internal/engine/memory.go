package engine

import (
	"fmt"

	"vacationtrail/internal/models"
)

// memoryLockFrames is how long a mismatched pair stays face up before
// flipping back (1s). Input is ignored while the lock runs.
const memoryLockFrames = 60

// defaultMemoryValues is used when the challenge doesn't configure images.
var defaultMemoryValues = []string{
	"sun", "wave", "shell", "palm", "crab", "boat", "star", "fish",
}

// MemoryCard is one face-down card.
type MemoryCard struct {
	Value   string `json:"value"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
}

// MemoryState is the pair-matching state for one attempt.
type MemoryState struct {
	Cards      []MemoryCard `json:"cards"`
	Flipped    []int        `json:"flipped"`
	LockFrames float64      `json:"lockFrames"`
	Moves      int          `json:"moves"`
}

// MemoryEngine drives the pair-matching board. It never loses on its own;
// the countdown clock forces the loss on expiry.
type MemoryEngine struct{}

func (e *MemoryEngine) Kind() models.ChallengeKind { return models.KindMemory }

func (e *MemoryEngine) Init(ch *models.Challenge) (*State, error) {
	values := ch.MemoryImages
	if len(values) == 0 {
		values = defaultMemoryValues
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("memory challenge needs at least 2 values, got %d", len(values))
	}

	s := &State{Kind: models.KindMemory, Seed: newSeed()}

	cards := make([]MemoryCard, 0, len(values)*2)
	for _, v := range values {
		cards = append(cards, MemoryCard{Value: v}, MemoryCard{Value: v})
	}
	s.rand().Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	s.Memory = &MemoryState{Cards: cards}
	return s, nil
}

func (e *MemoryEngine) Tick(s *State, in Input, dt float64) {
	m := s.Memory
	if m == nil || e.Terminal(s) != OutcomeNone {
		return
	}

	if m.LockFrames > 0 {
		m.LockFrames -= dt
		if m.LockFrames > 0 {
			return
		}
		m.LockFrames = 0
		// Flip the mismatched pair back down.
		for _, idx := range m.Flipped {
			m.Cards[idx].FaceUp = false
		}
		m.Flipped = m.Flipped[:0]
	}

	if in.FlipIndex == nil {
		return
	}
	idx := *in.FlipIndex
	if idx < 0 || idx >= len(m.Cards) {
		return
	}
	card := &m.Cards[idx]
	if card.FaceUp || card.Matched {
		return
	}

	card.FaceUp = true
	m.Flipped = append(m.Flipped, idx)
	if len(m.Flipped) < 2 {
		return
	}

	m.Moves++
	a, b := &m.Cards[m.Flipped[0]], &m.Cards[m.Flipped[1]]
	if a.Value == b.Value {
		a.Matched, b.Matched = true, true
		m.Flipped = m.Flipped[:0]
	} else {
		m.LockFrames = memoryLockFrames
	}
}

func (e *MemoryEngine) Terminal(s *State) Outcome {
	m := s.Memory
	if m == nil {
		return OutcomeNone
	}
	for i := range m.Cards {
		if !m.Cards[i].Matched {
			return OutcomeNone
		}
	}
	return OutcomeWin
}
