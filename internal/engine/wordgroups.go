package engine

import (
	"fmt"
	"strings"

	"vacationtrail/internal/models"
)

const groupsDefaultLives = 4

// SolvedGroup is one correctly identified group.
type SolvedGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// GroupsState is the word-grouping state for one attempt.
type GroupsState struct {
	Remaining []string      `json:"remaining"`
	Solved    []SolvedGroup `json:"solved"`
	Lives     int           `json:"lives"`
}

// GroupsEngine tracks solved groups from oracle verdicts. A wrong selection
// costs a life.
type GroupsEngine struct{}

func (e *GroupsEngine) Kind() models.ChallengeKind { return models.KindWordGroups }

func (e *GroupsEngine) Init(ch *models.Challenge) (*State, error) {
	if len(ch.ConnectionItems) == 0 {
		return nil, fmt.Errorf("word groups challenge has no items")
	}
	lives := ch.GroupsLives
	if lives <= 0 {
		lives = groupsDefaultLives
	}

	remaining := make([]string, len(ch.ConnectionItems))
	for i, item := range ch.ConnectionItems {
		remaining[i] = item.Word
	}

	s := &State{Kind: models.KindWordGroups, Seed: newSeed()}
	s.Groups = &GroupsState{Remaining: remaining, Lives: lives}
	return s, nil
}

func (e *GroupsEngine) Tick(s *State, in Input, dt float64) {
	g := s.Groups
	if g == nil || e.Terminal(s) != OutcomeNone {
		return
	}
	if in.GroupCorrect == nil {
		return
	}

	if !*in.GroupCorrect {
		g.Lives--
		return
	}

	g.Solved = append(g.Solved, SolvedGroup{Title: in.GroupTitle, Items: in.GroupItems})
	g.Remaining = removeItems(g.Remaining, in.GroupItems)
}

func removeItems(remaining, taken []string) []string {
	out := remaining[:0]
	for _, word := range remaining {
		found := false
		for _, t := range taken {
			if strings.EqualFold(word, t) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, word)
		}
	}
	return out
}

func (e *GroupsEngine) Terminal(s *State) Outcome {
	g := s.Groups
	if g == nil {
		return OutcomeNone
	}
	if len(g.Remaining) == 0 && len(g.Solved) > 0 {
		return OutcomeWin
	}
	if g.Lives <= 0 {
		return OutcomeLoss
	}
	return OutcomeNone
}
