package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// NotificationRepository handles database operations for player notifications
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Add queues a message for a player
func (r *NotificationRepository) Add(username, message string) (models.Notification, error) {
	n := models.Notification{
		ID:        uuid.New().String(),
		Message:   message,
		CreatedAt: time.Now(),
	}
	query := "INSERT INTO notifications (id, username, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, n.ID, username, n.Message, false, n.CreatedAt); err != nil {
		return models.Notification{}, fmt.Errorf("failed to add notification: %w", err)
	}
	return n, nil
}

// List retrieves a player's notifications, newest first
func (r *NotificationRepository) List(username string) ([]models.Notification, error) {
	query := `
		SELECT id, message, is_read, created_at FROM notifications
		WHERE username = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags one notification as seen
func (r *NotificationRepository) MarkRead(username, id string) error {
	query := "UPDATE notifications SET is_read = " + r.db.Dialect.BoolValue(true) +
		" WHERE username = ? AND id = ?"
	if _, err := r.db.Exec(query, username, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
