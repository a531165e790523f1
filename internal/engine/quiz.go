package engine

import (
	"fmt"

	"vacationtrail/internal/models"
)

// quizFeedbackFrames is the per-question feedback pause (1.5s) before the
// next question appears. Answers during the pause are ignored.
const quizFeedbackFrames = 90

// QuizState is the sequential quiz state for one attempt. Score doubles as
// the movement reward when the attempt wins.
type QuizState struct {
	Index          int     `json:"index"`
	Total          int     `json:"total"`
	Score          int     `json:"score"`
	FeedbackFrames float64 `json:"feedbackFrames"`
	LastCorrect    bool    `json:"lastCorrect"`
	Done           bool    `json:"done"`
}

// QuizEngine advances through sub-questions on oracle verdicts. Zero correct
// answers at the end is the one way this engine loses.
type QuizEngine struct{}

func (e *QuizEngine) Kind() models.ChallengeKind { return models.KindSequentialQuiz }

func (e *QuizEngine) Init(ch *models.Challenge) (*State, error) {
	if len(ch.SubQuestions) == 0 {
		return nil, fmt.Errorf("quiz challenge has no questions")
	}
	s := &State{Kind: models.KindSequentialQuiz, Seed: newSeed()}
	s.Quiz = &QuizState{Total: len(ch.SubQuestions)}
	return s, nil
}

func (e *QuizEngine) Tick(s *State, in Input, dt float64) {
	q := s.Quiz
	if q == nil || q.Done {
		return
	}

	if q.FeedbackFrames > 0 {
		q.FeedbackFrames -= dt
		if q.FeedbackFrames > 0 {
			return
		}
		q.FeedbackFrames = 0
		q.Index++
		if q.Index >= q.Total {
			q.Done = true
		}
		return
	}

	if in.QuizOption == nil {
		return
	}
	q.LastCorrect = in.QuizCorrect
	if in.QuizCorrect {
		q.Score++
	}
	q.FeedbackFrames = quizFeedbackFrames
}

// ForceFinish ends the quiz where it stands; used when the clock expires.
func (e *QuizEngine) ForceFinish(s *State) {
	if s.Quiz != nil {
		s.Quiz.Done = true
	}
}

func (e *QuizEngine) Terminal(s *State) Outcome {
	q := s.Quiz
	if q == nil || !q.Done {
		return OutcomeNone
	}
	if q.Score == 0 {
		return OutcomeLoss
	}
	return OutcomeWin
}
