package models

import "time"

// AttemptStatus is the recorded outcome of one try at a challenge day.
type AttemptStatus string

const (
	AttemptWin     AttemptStatus = "WIN"
	AttemptLoss    AttemptStatus = "LOSS"
	AttemptPending AttemptStatus = "PENDING"
)

// Terminal reports whether the status can no longer change through normal play.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptWin || s == AttemptLoss
}

// Attempt is the per-player per-day outcome record.
type Attempt struct {
	Status     AttemptStatus `json:"status"`
	RecordedAt time.Time     `json:"timestamp"`
}

// ImageSubmission is one uploaded photo for a photo challenge day.
type ImageSubmission struct {
	Day         int       `json:"day"`
	ImageURL    string    `json:"imageUrl"`
	SubmittedAt time.Time `json:"timestamp"`
}

// Notification is a short message queued for a player.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Player is one participant on the board.
type Player struct {
	Username      string            `json:"username"`
	FullName      string            `json:"fullName"`
	AvatarURL     string            `json:"avatarUrl,omitempty"`
	Position      int               `json:"position"`
	Attempts      map[int]Attempt   `json:"attempts"`
	CompletedDays []int             `json:"completedDays"`
	Submissions   []ImageSubmission `json:"imageSubmissions"`
	Notifications []Notification    `json:"notifications,omitempty"`
	HasSeenIntro  bool              `json:"hasSeenIntro"`
	LastActive    time.Time         `json:"lastActive"`
}

// AttemptFor returns the recorded attempt for a day, if any.
func (p *Player) AttemptFor(day int) (Attempt, bool) {
	if p.Attempts == nil {
		return Attempt{}, false
	}
	a, ok := p.Attempts[day]
	return a, ok
}
