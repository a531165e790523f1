package engine

import (
	"strings"

	"vacationtrail/internal/models"
)

// wordGuessMaxAttempts is the fixed guess budget.
const wordGuessMaxAttempts = 5

// GuessRow is one scored guess.
type GuessRow struct {
	Word  string              `json:"word"`
	Marks []models.LetterMark `json:"marks"`
}

// WordGuessState is the five-letter word game state for one attempt.
type WordGuessState struct {
	Rows   []GuessRow `json:"rows"`
	Solved bool       `json:"solved"`
}

// WordGuessEngine records oracle-scored guesses. The target word never
// enters this state; only the marks do.
type WordGuessEngine struct{}

func (e *WordGuessEngine) Kind() models.ChallengeKind { return models.KindWordGuess }

func (e *WordGuessEngine) Init(ch *models.Challenge) (*State, error) {
	s := &State{Kind: models.KindWordGuess, Seed: newSeed()}
	s.WordGuess = &WordGuessState{}
	return s, nil
}

func (e *WordGuessEngine) Tick(s *State, in Input, dt float64) {
	w := s.WordGuess
	if w == nil || e.Terminal(s) != OutcomeNone {
		return
	}
	if in.GuessWord == "" || len(in.GuessMarks) == 0 {
		return
	}

	w.Rows = append(w.Rows, GuessRow{
		Word:  strings.ToLower(in.GuessWord),
		Marks: in.GuessMarks,
	})
	if in.GuessSolved {
		w.Solved = true
	}
}

func (e *WordGuessEngine) Terminal(s *State) Outcome {
	w := s.WordGuess
	if w == nil {
		return OutcomeNone
	}
	if w.Solved {
		return OutcomeWin
	}
	if len(w.Rows) >= wordGuessMaxAttempts {
		return OutcomeLoss
	}
	return OutcomeNone
}
