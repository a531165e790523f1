package models

import "strings"

// ChallengeKind identifies which runtime drives a challenge.
type ChallengeKind string

const (
	KindTextAnswer     ChallengeKind = "TEXT"
	KindTimedText      ChallengeKind = "TIMED"
	KindWordGroups     ChallengeKind = "CONNECTIONS"
	KindSequentialQuiz ChallengeKind = "MULTIPLE_CHOICE"
	KindWordGuess      ChallengeKind = "TERMO"
	KindRunner         ChallengeKind = "FLAPPY"
	KindCategoryWord   ChallengeKind = "ADEDONHA"
	KindMemory         ChallengeKind = "MEMORY"
	KindScramble       ChallengeKind = "SCRAMBLED"
	KindPaddleBall     ChallengeKind = "PONG"
	KindPlatformer     ChallengeKind = "PLATFORMER"
	KindPhotoUpload    ChallengeKind = "IMAGE"
	KindPhotoScavenger ChallengeKind = "SCAVENGER"
)

// BonusDay is the reserved id for the extra-challenge tile riddle.
const BonusDay = 99

// CategoryWordCategories is the fixed category list for category-word rounds.
var CategoryWordCategories = []string{
	"Name",
	"Place (city, state or country)",
	"Animal",
	"Color",
	"Food",
	"Movie or series",
	"My manager is",
	"Car",
	"Team",
}

// BallSpeed selects the paddle-ball base speed.
type BallSpeed string

const (
	SpeedSlow   BallSpeed = "SLOW"
	SpeedMedium BallSpeed = "MEDIUM"
	SpeedFast   BallSpeed = "FAST"
)

// LetterMark is the per-letter verdict on a word guess.
type LetterMark string

const (
	MarkCorrect LetterMark = "CORRECT"
	MarkPresent LetterMark = "PRESENT"
	MarkAbsent  LetterMark = "ABSENT"
)

// ConnectionGroup is one hidden group of four related items.
type ConnectionGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// SubQuestion is one step of a sequential quiz. CorrectIndex lives only in
// the hidden solution; the public copy carries just question and options.
type SubQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex,omitempty"`
}

// ConnectionItem is a single word in the public shuffled flat list.
type ConnectionItem struct {
	Word string `json:"word"`
}

// Challenge is the public-facing definition of one day's challenge. Hidden
// answer data is stored separately (see Solution); nothing in here may allow
// offline verification.
type Challenge struct {
	Day      int           `json:"day"`
	Date     string        `json:"date,omitempty"` // YYYY-MM-DD unlock date
	Kind     ChallengeKind `json:"type"`
	Question string        `json:"question"`
	Points   int           `json:"points"`
	// TimeLimit in seconds; 0 means use the kind default (see EffectiveTimeLimit).
	TimeLimit int    `json:"timeLimit"`
	Status    string `json:"status"`

	// Public derived fields, computed on save from the hidden solution.
	ScrambledDisplay string           `json:"publicScrambledString,omitempty"`
	ConnectionItems  []ConnectionItem `json:"connectionItems,omitempty"`
	SubQuestions     []SubQuestion    `json:"subQuestions,omitempty"`
	Letter           string           `json:"letter,omitempty"`

	// Per-kind configuration.
	GroupsLives     int       `json:"connectionsLives,omitempty"`
	RunnerThreshold int       `json:"flappyThreshold,omitempty"`
	RunnerLives     int       `json:"flappyLives,omitempty"`
	BallThreshold   int       `json:"pongScoreThreshold,omitempty"`
	BallSpeed       BallSpeed `json:"pongSpeed,omitempty"`
	BallLives       int       `json:"pongLives,omitempty"`
	PlatformerLives int       `json:"platformerLives,omitempty"`
	MemoryImages    []string  `json:"memoryImages,omitempty"`
	ScavengerItem   string    `json:"scavengerItem,omitempty"`
	CustomImage     string    `json:"customImage,omitempty"`
}

// DynamicReward reports whether the challenge's reward is computed from
// performance rather than fixed Points.
func (c *Challenge) DynamicReward() bool {
	return c.Kind == KindSequentialQuiz || c.Kind == KindCategoryWord
}

// NeedsManualStart reports whether the challenge shows instructions first and
// waits for an explicit start before the timer runs. The scavenger hunt
// counts: the clock only matters once the player goes hunting.
func (c *Challenge) NeedsManualStart() bool {
	switch c.Kind {
	case KindTimedText, KindSequentialQuiz, KindScramble, KindCategoryWord,
		KindPhotoScavenger:
		return true
	}
	return false
}

// EffectiveTimeLimit returns the time limit in seconds, applying the per-kind
// default when the configured limit is zero. Paddle-ball is never timed.
func (c *Challenge) EffectiveTimeLimit() int {
	if c.TimeLimit > 0 {
		return c.TimeLimit
	}
	switch c.Kind {
	case KindPhotoScavenger, KindMemory, KindCategoryWord:
		return 120
	case KindScramble, KindPlatformer, KindTimedText, KindSequentialQuiz:
		return 60
	}
	return 0
}

// TimerForcesLoss reports whether timer expiry terminates the attempt. The
// scavenger hunt timer is display-only; category-word auto-submits instead.
func (c *Challenge) TimerForcesLoss() bool {
	switch c.Kind {
	case KindTimedText, KindScramble, KindPlatformer, KindMemory:
		return true
	}
	return false
}

// ServerVerified reports whether a win requires an oracle check. Simulation
// kinds resolve locally; their win condition is engine state, not a secret.
func (c *Challenge) ServerVerified() bool {
	switch c.Kind {
	case KindTextAnswer, KindTimedText, KindWordGroups, KindWordGuess,
		KindScramble, KindSequentialQuiz:
		return true
	}
	return false
}

// Solution is the hidden answer blob for a challenge, stored as one opaque
// serialized document readable only by the oracle.
type Solution struct {
	AnswerKeywords     []string          `json:"answerKeywords,omitempty"`
	CorrectAnswerIndex int               `json:"correctAnswerIndex,omitempty"`
	SubQuestionAnswers []int             `json:"subQuestionAnswers,omitempty"`
	WordTarget         string            `json:"wordleTarget,omitempty"`
	ScrambledWord      string            `json:"scrambledWord,omitempty"`
	ConnectionGroups   []ConnectionGroup `json:"connectionGroups,omitempty"`
}

// GroupContaining returns the hidden group holding the given item, if any.
func (s *Solution) GroupContaining(item string) *ConnectionGroup {
	for i := range s.ConnectionGroups {
		for _, it := range s.ConnectionGroups[i].Items {
			if strings.EqualFold(it, item) {
				return &s.ConnectionGroups[i]
			}
		}
	}
	return nil
}

// LibraryItem is a reusable challenge template authored by the admin.
type LibraryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   Challenge `json:"riddleContent"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
}
