package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// LogRepository handles database operations for the shared game history
type LogRepository struct {
	db *database.DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *database.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Append adds one event to the game history. ID and timestamp are assigned
// here if unset.
func (r *LogRepository) Append(entry models.GameLog) (models.GameLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO game_logs (id, username, target_user, day, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, entry.ID, entry.Username, entry.TargetUser, entry.Day,
		entry.Action, entry.Details, entry.CreatedAt)
	if err != nil {
		return models.GameLog{}, fmt.Errorf("failed to append game log: %w", err)
	}
	return entry, nil
}

// ListRecent retrieves the newest events, most recent first
func (r *LogRepository) ListRecent(limit int) ([]models.GameLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, username, target_user, day, action, details, created_at
		FROM game_logs ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game logs: %w", err)
	}
	defer rows.Close()

	var logs []models.GameLog
	for rows.Next() {
		var entry models.GameLog
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.TargetUser, &entry.Day,
			&entry.Action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
