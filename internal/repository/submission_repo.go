package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// SubmissionRepository handles database operations for category-word answer
// sheets awaiting human review
type SubmissionRepository struct {
	db *database.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create stores a fresh submission in the pending state
func (r *SubmissionRepository) Create(sub *models.CategorySubmission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	validation, err := json.Marshal(sub.Validation)
	if err != nil {
		return fmt.Errorf("failed to encode validation: %w", err)
	}

	query := `
		INSERT INTO category_submissions (username, day, answers, validation, score, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, sub.Username, sub.Day, string(answers), string(validation),
		sub.Score, sub.Status, sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// Get retrieves one player's submission for a day
func (r *SubmissionRepository) Get(username string, day int) (*models.CategorySubmission, error) {
	query := `
		SELECT username, day, answers, validation, score, status, submitted_at
		FROM category_submissions WHERE username = ? AND day = ?
	`
	return r.scanOne(r.db.QueryRow(query, username, day))
}

// ListPending retrieves all submissions awaiting review, oldest first
func (r *SubmissionRepository) ListPending() ([]models.CategorySubmission, error) {
	query := `
		SELECT username, day, answers, validation, score, status, submitted_at
		FROM category_submissions WHERE status = ? ORDER BY submitted_at ASC
	`
	rows, err := r.db.Query(query, "PENDING")
	if err != nil {
		return nil, fmt.Errorf("failed to query pending submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.CategorySubmission
	for rows.Next() {
		sub, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Update stores the reviewer's verdicts and final score
func (r *SubmissionRepository) Update(sub *models.CategorySubmission) error {
	validation, err := json.Marshal(sub.Validation)
	if err != nil {
		return fmt.Errorf("failed to encode validation: %w", err)
	}
	query := `
		UPDATE category_submissions SET validation = ?, score = ?, status = ?
		WHERE username = ? AND day = ?
	`
	if _, err := r.db.Exec(query, string(validation), sub.Score, sub.Status, sub.Username, sub.Day); err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SubmissionRepository) scanOne(row *sql.Row) (*models.CategorySubmission, error) {
	sub, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SubmissionRepository) scanRow(row rowScanner) (*models.CategorySubmission, error) {
	sub := &models.CategorySubmission{}
	var answers, validation string
	err := row.Scan(&sub.Username, &sub.Day, &answers, &validation, &sub.Score, &sub.Status, &sub.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	if err := json.Unmarshal([]byte(validation), &sub.Validation); err != nil {
		return nil, fmt.Errorf("failed to parse validation: %w", err)
	}
	return sub, nil
}
