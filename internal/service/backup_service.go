package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vacationtrail/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string                     `json:"version"`
	ExportedAt  time.Time                  `json:"exported_at"`
	Players     []PlayerBackup             `json:"players"`
	Credentials []CredentialBackup         `json:"credentials"`
	Challenges  []ChallengeBackup          `json:"challenges"`
	Answers     []AnswerBackup             `json:"challenge_answers"`
	Attempts    []AttemptBackup            `json:"attempts"`
	Photos      []PhotoBackup              `json:"image_submissions"`
	Sheets      []CategorySubmissionBackup `json:"category_submissions"`
	Logs        []GameLogBackup            `json:"game_logs"`
	Tiles       []TileBackup               `json:"board_tiles"`
	Alerts      []NotificationBackup       `json:"notifications"`
	Settings    []SettingBackup            `json:"settings"`
	Library     []LibraryBackup            `json:"library_items"`
}

// PlayerBackup represents a player record for backup
type PlayerBackup struct {
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	Position      int       `json:"position"`
	CompletedDays string    `json:"completed_days"`
	HasSeenIntro  bool      `json:"has_seen_intro"`
	LastActive    time.Time `json:"last_active"`
}

// CredentialBackup represents a login record for backup
type CredentialBackup struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	IsAdmin      bool   `json:"is_admin"`
}

// ChallengeBackup represents a challenge document for backup
type ChallengeBackup struct {
	Day       int       `json:"day"`
	Status    string    `json:"status"`
	Doc       string    `json:"doc"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerBackup represents a hidden answer document for backup
type AnswerBackup struct {
	Day       int       `json:"day"`
	Doc       string    `json:"doc"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttemptBackup represents an attempt record for backup
type AttemptBackup struct {
	Username   string    `json:"username"`
	Day        int       `json:"day"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PhotoBackup represents a photo submission for backup
type PhotoBackup struct {
	Username    string    `json:"username"`
	Day         int       `json:"day"`
	ImageURL    string    `json:"image_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CategorySubmissionBackup represents an answer sheet for backup
type CategorySubmissionBackup struct {
	Username    string    `json:"username"`
	Day         int       `json:"day"`
	Answers     string    `json:"answers"`
	Validation  string    `json:"validation"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GameLogBackup represents a game log entry for backup
type GameLogBackup struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	TargetUser string    `json:"target_user"`
	Day        int       `json:"day"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// TileBackup represents a board tile for backup
type TileBackup struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// NotificationBackup represents a notification for backup
type NotificationBackup struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SettingBackup represents a settings row for backup
type SettingBackup struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LibraryBackup represents a library template for backup
type LibraryBackup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Doc       string `json:"doc"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportPlayers(backup); err != nil {
		return fmt.Errorf("failed to export players: %w", err)
	}
	if err := s.exportCredentials(backup); err != nil {
		return fmt.Errorf("failed to export credentials: %w", err)
	}
	if err := s.exportChallenges(backup); err != nil {
		return fmt.Errorf("failed to export challenges: %w", err)
	}
	if err := s.exportAttempts(backup); err != nil {
		return fmt.Errorf("failed to export attempts: %w", err)
	}
	if err := s.exportPhotos(backup); err != nil {
		return fmt.Errorf("failed to export photos: %w", err)
	}
	if err := s.exportSheets(backup); err != nil {
		return fmt.Errorf("failed to export submissions: %w", err)
	}
	if err := s.exportLogs(backup); err != nil {
		return fmt.Errorf("failed to export game logs: %w", err)
	}
	if err := s.exportTiles(backup); err != nil {
		return fmt.Errorf("failed to export board tiles: %w", err)
	}
	if err := s.exportAlerts(backup); err != nil {
		return fmt.Errorf("failed to export notifications: %w", err)
	}
	if err := s.exportSettings(backup); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	if err := s.exportLibrary(backup); err != nil {
		return fmt.Errorf("failed to export library: %w", err)
	}

	log.Printf("Exported: %d players, %d credentials, %d challenges, %d attempts, %d sheets, %d logs",
		len(backup.Players), len(backup.Credentials), len(backup.Challenges),
		len(backup.Attempts), len(backup.Sheets), len(backup.Logs))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importCredentials(backup.Credentials); err != nil {
		return fmt.Errorf("failed to import credentials: %w", err)
	}
	if err := s.importPlayers(backup.Players); err != nil {
		return fmt.Errorf("failed to import players: %w", err)
	}
	if err := s.importChallenges(backup.Challenges, backup.Answers); err != nil {
		return fmt.Errorf("failed to import challenges: %w", err)
	}
	if err := s.importAttempts(backup.Attempts); err != nil {
		return fmt.Errorf("failed to import attempts: %w", err)
	}
	if err := s.importPhotos(backup.Photos); err != nil {
		return fmt.Errorf("failed to import photos: %w", err)
	}
	if err := s.importSheets(backup.Sheets); err != nil {
		return fmt.Errorf("failed to import submissions: %w", err)
	}
	if err := s.importLogs(backup.Logs); err != nil {
		return fmt.Errorf("failed to import game logs: %w", err)
	}
	if err := s.importTiles(backup.Tiles); err != nil {
		return fmt.Errorf("failed to import board tiles: %w", err)
	}
	if err := s.importAlerts(backup.Alerts); err != nil {
		return fmt.Errorf("failed to import notifications: %w", err)
	}
	if err := s.importSettings(backup.Settings); err != nil {
		return fmt.Errorf("failed to import settings: %w", err)
	}
	if err := s.importLibrary(backup.Library); err != nil {
		return fmt.Errorf("failed to import library: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportPlayers(backup *BackupData) error {
	query := "SELECT username, full_name, COALESCE(avatar_url, ''), position, completed_days, has_seen_intro, last_active FROM players ORDER BY username"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PlayerBackup
		if err := rows.Scan(&p.Username, &p.FullName, &p.AvatarURL, &p.Position, &p.CompletedDays, &p.HasSeenIntro, &p.LastActive); err != nil {
			return err
		}
		backup.Players = append(backup.Players, p)
	}
	return rows.Err()
}

func (s *BackupService) exportCredentials(backup *BackupData) error {
	query := "SELECT username, COALESCE(email, ''), password_hash, is_admin FROM credentials ORDER BY username"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CredentialBackup
		if err := rows.Scan(&c.Username, &c.Email, &c.PasswordHash, &c.IsAdmin); err != nil {
			return err
		}
		backup.Credentials = append(backup.Credentials, c)
	}
	return rows.Err()
}

func (s *BackupService) exportChallenges(backup *BackupData) error {
	query := "SELECT day, status, doc, updated_at FROM challenges ORDER BY day"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChallengeBackup
		if err := rows.Scan(&c.Day, &c.Status, &c.Doc, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Challenges = append(backup.Challenges, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	answerRows, err := s.db.Query("SELECT day, doc, updated_at FROM challenge_answers ORDER BY day")
	if err != nil {
		return err
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var a AnswerBackup
		if err := answerRows.Scan(&a.Day, &a.Doc, &a.UpdatedAt); err != nil {
			return err
		}
		backup.Answers = append(backup.Answers, a)
	}
	return answerRows.Err()
}

func (s *BackupService) exportAttempts(backup *BackupData) error {
	query := "SELECT username, day, status, recorded_at FROM attempts ORDER BY username, day"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AttemptBackup
		if err := rows.Scan(&a.Username, &a.Day, &a.Status, &a.RecordedAt); err != nil {
			return err
		}
		backup.Attempts = append(backup.Attempts, a)
	}
	return rows.Err()
}

func (s *BackupService) exportPhotos(backup *BackupData) error {
	query := "SELECT username, day, image_url, submitted_at FROM image_submissions ORDER BY username, day"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PhotoBackup
		if err := rows.Scan(&p.Username, &p.Day, &p.ImageURL, &p.SubmittedAt); err != nil {
			return err
		}
		backup.Photos = append(backup.Photos, p)
	}
	return rows.Err()
}

func (s *BackupService) exportSheets(backup *BackupData) error {
	query := "SELECT username, day, answers, validation, score, status, submitted_at FROM category_submissions ORDER BY username, day"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CategorySubmissionBackup
		if err := rows.Scan(&c.Username, &c.Day, &c.Answers, &c.Validation, &c.Score, &c.Status, &c.SubmittedAt); err != nil {
			return err
		}
		backup.Sheets = append(backup.Sheets, c)
	}
	return rows.Err()
}

func (s *BackupService) exportLogs(backup *BackupData) error {
	query := "SELECT id, username, COALESCE(target_user, ''), day, action, COALESCE(details, ''), created_at FROM game_logs ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l GameLogBackup
		if err := rows.Scan(&l.ID, &l.Username, &l.TargetUser, &l.Day, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return err
		}
		backup.Logs = append(backup.Logs, l)
	}
	return rows.Err()
}

func (s *BackupService) exportTiles(backup *BackupData) error {
	query := "SELECT id, type, COALESCE(label, '') FROM board_tiles ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TileBackup
		if err := rows.Scan(&t.ID, &t.Type, &t.Label); err != nil {
			return err
		}
		backup.Tiles = append(backup.Tiles, t)
	}
	return rows.Err()
}

func (s *BackupService) exportAlerts(backup *BackupData) error {
	query := "SELECT id, username, message, is_read, created_at FROM notifications ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n NotificationBackup
		if err := rows.Scan(&n.ID, &n.Username, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return err
		}
		backup.Alerts = append(backup.Alerts, n)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kv SettingBackup
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return err
		}
		backup.Settings = append(backup.Settings, kv)
	}
	return rows.Err()
}

func (s *BackupService) exportLibrary(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, doc, status, created_at FROM library_items ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l LibraryBackup
		if err := rows.Scan(&l.ID, &l.Name, &l.Doc, &l.Status, &l.CreatedAt); err != nil {
			return err
		}
		backup.Library = append(backup.Library, l)
	}
	return rows.Err()
}

func (s *BackupService) importCredentials(creds []CredentialBackup) error {
	log.Printf("Importing %d credentials...", len(creds))
	for _, c := range creds {
		query := "INSERT INTO credentials (username, email, password_hash, is_admin) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.Username, nullIfEmpty(c.Email), c.PasswordHash, c.IsAdmin); err != nil {
			return fmt.Errorf("failed to import credential %s: %w", c.Username, err)
		}
	}
	return nil
}

func (s *BackupService) importPlayers(players []PlayerBackup) error {
	log.Printf("Importing %d players...", len(players))
	for _, p := range players {
		query := "INSERT INTO players (username, full_name, avatar_url, position, completed_days, has_seen_intro, last_active) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.Username, p.FullName, nullIfEmpty(p.AvatarURL), p.Position, p.CompletedDays, p.HasSeenIntro, p.LastActive); err != nil {
			return fmt.Errorf("failed to import player %s: %w", p.Username, err)
		}
	}
	return nil
}

func (s *BackupService) importChallenges(challenges []ChallengeBackup, answers []AnswerBackup) error {
	log.Printf("Importing %d challenges and %d answer docs...", len(challenges), len(answers))
	for _, c := range challenges {
		query := "INSERT INTO challenges (day, status, doc, updated_at) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.Day, c.Status, c.Doc, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import challenge %d: %w", c.Day, err)
		}
	}
	for _, a := range answers {
		query := "INSERT INTO challenge_answers (day, doc, updated_at) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, a.Day, a.Doc, a.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import answer doc %d: %w", a.Day, err)
		}
	}
	return nil
}

func (s *BackupService) importAttempts(attempts []AttemptBackup) error {
	log.Printf("Importing %d attempts...", len(attempts))
	for _, a := range attempts {
		query := "INSERT INTO attempts (username, day, status, recorded_at) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, a.Username, a.Day, a.Status, a.RecordedAt); err != nil {
			return fmt.Errorf("failed to import attempt %s/%d: %w", a.Username, a.Day, err)
		}
	}
	return nil
}

func (s *BackupService) importPhotos(photos []PhotoBackup) error {
	log.Printf("Importing %d photos...", len(photos))
	for _, p := range photos {
		query := "INSERT INTO image_submissions (username, day, image_url, submitted_at) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.Username, p.Day, p.ImageURL, p.SubmittedAt); err != nil {
			return fmt.Errorf("failed to import photo %s/%d: %w", p.Username, p.Day, err)
		}
	}
	return nil
}

func (s *BackupService) importSheets(sheets []CategorySubmissionBackup) error {
	log.Printf("Importing %d answer sheets...", len(sheets))
	for _, c := range sheets {
		query := "INSERT INTO category_submissions (username, day, answers, validation, score, status, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.Username, c.Day, c.Answers, c.Validation, c.Score, c.Status, c.SubmittedAt); err != nil {
			return fmt.Errorf("failed to import sheet %s/%d: %w", c.Username, c.Day, err)
		}
	}
	return nil
}

func (s *BackupService) importLogs(logs []GameLogBackup) error {
	log.Printf("Importing %d game logs...", len(logs))
	for _, l := range logs {
		query := "INSERT INTO game_logs (id, username, target_user, day, action, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, l.ID, l.Username, nullIfEmpty(l.TargetUser), l.Day, l.Action, nullIfEmpty(l.Details), l.CreatedAt); err != nil {
			return fmt.Errorf("failed to import game log %s: %w", l.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTiles(tiles []TileBackup) error {
	log.Printf("Importing %d board tiles...", len(tiles))
	for _, t := range tiles {
		query := "INSERT INTO board_tiles (id, type, label) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, t.ID, t.Type, nullIfEmpty(t.Label)); err != nil {
			return fmt.Errorf("failed to import tile %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAlerts(alerts []NotificationBackup) error {
	log.Printf("Importing %d notifications...", len(alerts))
	for _, n := range alerts {
		query := "INSERT INTO notifications (id, username, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, n.ID, n.Username, n.Message, n.IsRead, n.CreatedAt); err != nil {
			return fmt.Errorf("failed to import notification %s: %w", n.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSettings(settings []SettingBackup) error {
	log.Printf("Importing %d settings...", len(settings))
	for _, kv := range settings {
		if _, err := s.db.Exec(s.db.Dialect.UpsertSettings(), kv.Key, kv.Value); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", kv.Key, err)
		}
	}
	return nil
}

func (s *BackupService) importLibrary(items []LibraryBackup) error {
	log.Printf("Importing %d library items...", len(items))
	for _, l := range items {
		query := "INSERT INTO library_items (id, name, doc, status, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, l.ID, l.Name, l.Doc, l.Status, l.CreatedAt); err != nil {
			return fmt.Errorf("failed to import library item %s: %w", l.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
