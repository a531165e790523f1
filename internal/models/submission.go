package models

import "time"

// ValidationState is a reviewer's verdict on a single category answer.
type ValidationState string

const (
	ValidationPending  ValidationState = "PENDING"
	ValidationApproved ValidationState = "APPROVED"
	ValidationRejected ValidationState = "REJECTED"
)

// CategorySubmission is one player's full category-word answer sheet, graded
// asynchronously by a human reviewer. Reward is floor(approved / 3) tiles.
type CategorySubmission struct {
	Username    string                     `json:"username"`
	Day         int                        `json:"day"`
	Answers     map[string]string          `json:"answers"`
	Validation  map[string]ValidationState `json:"validation"`
	Score       int                        `json:"score"`
	Status      string                     `json:"status"` // PENDING or COMPLETED
	SubmittedAt time.Time                  `json:"timestamp"`
}

// ApprovedCount returns how many categories the reviewer has approved.
func (s *CategorySubmission) ApprovedCount() int {
	n := 0
	for _, v := range s.Validation {
		if v == ValidationApproved {
			n++
		}
	}
	return n
}

// MovementReward converts approved answers into tiles: every 3 approvals
// grant 1 movement unit.
func (s *CategorySubmission) MovementReward() int {
	return s.ApprovedCount() / 3
}
