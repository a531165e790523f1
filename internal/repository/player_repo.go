package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// PlayerRepository handles database operations for players and their attempts
type PlayerRepository struct {
	db *database.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// CreatePlayer creates a new player at the starting tile
func (r *PlayerRepository) CreatePlayer(username, fullName, avatarURL string) (*models.Player, error) {
	query := `
		INSERT INTO players (username, full_name, avatar_url, position, completed_days, has_seen_intro, last_active)
		VALUES (?, ?, ?, 1, '[]', ` + r.db.Dialect.BoolValue(false) + `, ?)
	`
	now := time.Now()
	if _, err := r.db.Exec(query, username, fullName, avatarURL, now); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return &models.Player{
		Username:      username,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		Position:      1,
		Attempts:      make(map[int]models.Attempt),
		CompletedDays: []int{},
		LastActive:    now,
	}, nil
}

// GetPlayer retrieves a player with attempts loaded
func (r *PlayerRepository) GetPlayer(username string) (*models.Player, error) {
	query := `
		SELECT username, full_name, avatar_url, position, completed_days, has_seen_intro, last_active
		FROM players WHERE username = ?
	`
	player := &models.Player{}
	var completedDays string
	err := r.db.QueryRow(query, username).Scan(
		&player.Username,
		&player.FullName,
		&player.AvatarURL,
		&player.Position,
		&completedDays,
		&player.HasSeenIntro,
		&player.LastActive,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if err := json.Unmarshal([]byte(completedDays), &player.CompletedDays); err != nil {
		return nil, fmt.Errorf("failed to parse completed days for %s: %w", username, err)
	}

	attempts, err := r.GetAttempts(username)
	if err != nil {
		return nil, err
	}
	player.Attempts = attempts
	return player, nil
}

// ListPlayers retrieves all players ordered by position, leader first
func (r *PlayerRepository) ListPlayers() ([]models.Player, error) {
	query := `
		SELECT username, full_name, avatar_url, position, completed_days, has_seen_intro, last_active
		FROM players ORDER BY position DESC, username ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var player models.Player
		var completedDays string
		if err := rows.Scan(
			&player.Username,
			&player.FullName,
			&player.AvatarURL,
			&player.Position,
			&completedDays,
			&player.HasSeenIntro,
			&player.LastActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if err := json.Unmarshal([]byte(completedDays), &player.CompletedDays); err != nil {
			return nil, fmt.Errorf("failed to parse completed days for %s: %w", player.Username, err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// UpdatePosition moves a player to a new tile
func (r *PlayerRepository) UpdatePosition(username string, position int) error {
	query := "UPDATE players SET position = ?, last_active = ? WHERE username = ?"
	_, err := r.db.Exec(query, position, time.Now(), username)
	if err != nil {
		return fmt.Errorf("failed to update position for %s: %w", username, err)
	}
	return nil
}

// SetAvatar updates a player's avatar URL
func (r *PlayerRepository) SetAvatar(username, avatarURL string) error {
	query := "UPDATE players SET avatar_url = ? WHERE username = ?"
	_, err := r.db.Exec(query, avatarURL, username)
	if err != nil {
		return fmt.Errorf("failed to set avatar for %s: %w", username, err)
	}
	return nil
}

// MarkIntroSeen flags the player as having seen the intro
func (r *PlayerRepository) MarkIntroSeen(username string) error {
	query := "UPDATE players SET has_seen_intro = " + r.db.Dialect.BoolValue(true) + " WHERE username = ?"
	_, err := r.db.Exec(query, username)
	if err != nil {
		return fmt.Errorf("failed to mark intro seen for %s: %w", username, err)
	}
	return nil
}

// AddCompletedDay appends a day to the player's completed list if absent
func (r *PlayerRepository) AddCompletedDay(username string, day int) error {
	player, err := r.GetPlayer(username)
	if err != nil {
		return err
	}
	if player == nil {
		return fmt.Errorf("player %s not found", username)
	}
	for _, d := range player.CompletedDays {
		if d == day {
			return nil
		}
	}
	days := append(player.CompletedDays, day)
	encoded, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("failed to encode completed days: %w", err)
	}
	query := "UPDATE players SET completed_days = ? WHERE username = ?"
	if _, err := r.db.Exec(query, string(encoded), username); err != nil {
		return fmt.Errorf("failed to update completed days for %s: %w", username, err)
	}
	return nil
}

// ResetProgress puts a player back on the first tile with no completed days
func (r *PlayerRepository) ResetProgress(username string) error {
	query := "UPDATE players SET position = 1, completed_days = '[]' WHERE username = ?"
	if _, err := r.db.Exec(query, username); err != nil {
		return fmt.Errorf("failed to reset progress for %s: %w", username, err)
	}
	return nil
}

// DeleteAttempts removes every recorded attempt for a player
func (r *PlayerRepository) DeleteAttempts(username string) error {
	query := "DELETE FROM attempts WHERE username = ?"
	if _, err := r.db.Exec(query, username); err != nil {
		return fmt.Errorf("failed to delete attempts for %s: %w", username, err)
	}
	return nil
}

// GetAttempt retrieves one attempt record. Implements ledger.AttemptStore.
func (r *PlayerRepository) GetAttempt(username string, day int) (*models.Attempt, error) {
	query := "SELECT status, recorded_at FROM attempts WHERE username = ? AND day = ?"
	attempt := &models.Attempt{}
	err := r.db.QueryRow(query, username, day).Scan(&attempt.Status, &attempt.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// PutAttempt stores an attempt record. Implements ledger.AttemptStore.
func (r *PlayerRepository) PutAttempt(username string, day int, attempt models.Attempt) error {
	existing, err := r.GetAttempt(username, day)
	if err != nil {
		return err
	}
	if existing == nil {
		query := "INSERT INTO attempts (username, day, status, recorded_at) VALUES (?, ?, ?, ?)"
		_, err = r.db.Exec(query, username, day, attempt.Status, attempt.RecordedAt)
	} else {
		query := "UPDATE attempts SET status = ?, recorded_at = ? WHERE username = ? AND day = ?"
		_, err = r.db.Exec(query, attempt.Status, attempt.RecordedAt, username, day)
	}
	if err != nil {
		return fmt.Errorf("failed to store attempt: %w", err)
	}
	return nil
}

// GetAttempts loads all attempts for a player keyed by day
func (r *PlayerRepository) GetAttempts(username string) (map[int]models.Attempt, error) {
	query := "SELECT day, status, recorded_at FROM attempts WHERE username = ?"
	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make(map[int]models.Attempt)
	for rows.Next() {
		var day int
		var attempt models.Attempt
		if err := rows.Scan(&day, &attempt.Status, &attempt.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts[day] = attempt
	}
	return attempts, rows.Err()
}

// GetImageSubmissions lists a player's photo submissions, newest first
func (r *PlayerRepository) GetImageSubmissions(username string) ([]models.ImageSubmission, error) {
	query := `
		SELECT day, image_url, submitted_at FROM image_submissions
		WHERE username = ? ORDER BY submitted_at DESC
	`
	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query image submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.ImageSubmission
	for rows.Next() {
		var s models.ImageSubmission
		if err := rows.Scan(&s.Day, &s.ImageURL, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// AddImageSubmission stores one uploaded photo reference
func (r *PlayerRepository) AddImageSubmission(username string, sub models.ImageSubmission) error {
	query := "INSERT INTO image_submissions (username, day, image_url, submitted_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, username, sub.Day, sub.ImageURL, sub.SubmittedAt); err != nil {
		return fmt.Errorf("failed to add image submission: %w", err)
	}
	return nil
}
