package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// ChallengeRepository handles database operations for challenge definitions
// and their hidden answer documents. The public doc and the answer doc live
// in separate tables so the public read path can never leak a solution.
type ChallengeRepository struct {
	db *database.DB
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Upsert stores the public challenge document for a day
func (r *ChallengeRepository) Upsert(ch *models.Challenge) error {
	doc, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	existing, err := r.GetByDay(ch.Day)
	if err != nil {
		return err
	}
	if existing == nil {
		query := "INSERT INTO challenges (day, status, doc, updated_at) VALUES (?, ?, ?, ?)"
		_, err = r.db.Exec(query, ch.Day, ch.Status, string(doc), time.Now())
	} else {
		query := "UPDATE challenges SET status = ?, doc = ?, updated_at = ? WHERE day = ?"
		_, err = r.db.Exec(query, ch.Status, string(doc), time.Now(), ch.Day)
	}
	if err != nil {
		return fmt.Errorf("failed to store challenge for day %d: %w", ch.Day, err)
	}
	return nil
}

// GetByDay retrieves the public challenge document for a day
func (r *ChallengeRepository) GetByDay(day int) (*models.Challenge, error) {
	query := "SELECT doc FROM challenges WHERE day = ?"
	var doc string
	err := r.db.QueryRow(query, day).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge for day %d: %w", day, err)
	}

	ch := &models.Challenge{}
	if err := json.Unmarshal([]byte(doc), ch); err != nil {
		return nil, fmt.Errorf("failed to parse challenge for day %d: %w", day, err)
	}
	return ch, nil
}

// List retrieves all challenges ordered by day
func (r *ChallengeRepository) List() ([]models.Challenge, error) {
	query := "SELECT doc FROM challenges ORDER BY day ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		var ch models.Challenge
		if err := json.Unmarshal([]byte(doc), &ch); err != nil {
			return nil, fmt.Errorf("failed to parse challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}
	return challenges, rows.Err()
}

// Delete removes a day's challenge and its answer document
func (r *ChallengeRepository) Delete(day int) error {
	if _, err := r.db.Exec("DELETE FROM challenge_answers WHERE day = ?", day); err != nil {
		return fmt.Errorf("failed to delete answers for day %d: %w", day, err)
	}
	if _, err := r.db.Exec("DELETE FROM challenges WHERE day = ?", day); err != nil {
		return fmt.Errorf("failed to delete challenge for day %d: %w", day, err)
	}
	return nil
}

// UpsertSolution stores the hidden answer document for a day
func (r *ChallengeRepository) UpsertSolution(day int, sol *models.Solution) error {
	doc, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}

	existing, err := r.GetSolution(day)
	if err != nil {
		return err
	}
	if existing == nil {
		query := "INSERT INTO challenge_answers (day, doc, updated_at) VALUES (?, ?, ?)"
		_, err = r.db.Exec(query, day, string(doc), time.Now())
	} else {
		query := "UPDATE challenge_answers SET doc = ?, updated_at = ? WHERE day = ?"
		_, err = r.db.Exec(query, string(doc), time.Now(), day)
	}
	if err != nil {
		return fmt.Errorf("failed to store solution for day %d: %w", day, err)
	}
	return nil
}

// GetSolution retrieves the hidden answer document for a day. Implements
// oracle.SolutionSource; a missing document returns (nil, nil) and the
// oracle fails closed.
func (r *ChallengeRepository) GetSolution(day int) (*models.Solution, error) {
	query := "SELECT doc FROM challenge_answers WHERE day = ?"
	var doc string
	err := r.db.QueryRow(query, day).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solution for day %d: %w", day, err)
	}

	sol := &models.Solution{}
	if err := json.Unmarshal([]byte(doc), sol); err != nil {
		return nil, fmt.Errorf("failed to parse solution for day %d: %w", day, err)
	}
	return sol, nil
}

// LibraryList retrieves all reusable challenge templates
func (r *ChallengeRepository) LibraryList() ([]models.LibraryItem, error) {
	query := "SELECT id, name, doc, status, created_at FROM library_items ORDER BY created_at DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query library: %w", err)
	}
	defer rows.Close()

	var items []models.LibraryItem
	for rows.Next() {
		var item models.LibraryItem
		var doc string
		if err := rows.Scan(&item.ID, &item.Name, &doc, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan library item: %w", err)
		}
		if err := json.Unmarshal([]byte(doc), &item.Content); err != nil {
			return nil, fmt.Errorf("failed to parse library item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LibraryAdd stores a reusable challenge template
func (r *ChallengeRepository) LibraryAdd(item models.LibraryItem) error {
	doc, err := json.Marshal(item.Content)
	if err != nil {
		return fmt.Errorf("failed to encode library item: %w", err)
	}
	query := "INSERT INTO library_items (id, name, doc, status, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, item.ID, item.Name, string(doc), item.Status, item.CreatedAt); err != nil {
		return fmt.Errorf("failed to add library item: %w", err)
	}
	return nil
}
