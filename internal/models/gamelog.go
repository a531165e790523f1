package models

import "time"

// LogAction categorizes a game log entry.
type LogAction string

const (
	LogWin             LogAction = "WIN"
	LogLoss            LogAction = "LOSS"
	LogBoost           LogAction = "BOOST"
	LogTrap            LogAction = "TRAP"
	LogImageSubmit     LogAction = "IMAGE_SUBMIT"
	LogAutoForward     LogAction = "AUTO_FORWARD"
	LogAutoBack        LogAction = "AUTO_BACK"
	LogTileInteraction LogAction = "TILE_INTERACTION"
	LogCategorySubmit  LogAction = "CATEGORY_SUBMIT"
	LogReset           LogAction = "RESET"
)

// GameLog is one append-only event in the shared game history.
type GameLog struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	TargetUser string    `json:"targetUser,omitempty"`
	Day        int       `json:"day"`
	Action     LogAction `json:"action"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}
