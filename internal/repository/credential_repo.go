package repository

import (
	"database/sql"
	"fmt"

	"vacationtrail/internal/database"
)

// Credential is one login record. Player profile data lives in players;
// this table exists only for authentication.
type Credential struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// CredentialRepository handles database operations for logins
type CredentialRepository struct {
	db *database.DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *database.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create stores a new login
func (r *CredentialRepository) Create(cred Credential) error {
	query := "INSERT INTO credentials (username, email, password_hash, is_admin) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, cred.Username, cred.Email, cred.PasswordHash, cred.IsAdmin); err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// GetByUsername retrieves a login by username
func (r *CredentialRepository) GetByUsername(username string) (*Credential, error) {
	query := "SELECT username, email, password_hash, is_admin FROM credentials WHERE username = ?"
	cred := &Credential{}
	err := r.db.QueryRow(query, username).Scan(&cred.Username, &cred.Email, &cred.PasswordHash, &cred.IsAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return cred, nil
}

// GetByEmail retrieves a login by email, for OAuth account matching
func (r *CredentialRepository) GetByEmail(email string) (*Credential, error) {
	query := "SELECT username, email, password_hash, is_admin FROM credentials WHERE email = ?"
	cred := &Credential{}
	err := r.db.QueryRow(query, email).Scan(&cred.Username, &cred.Email, &cred.PasswordHash, &cred.IsAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential by email: %w", err)
	}
	return cred, nil
}

// UpdatePassword replaces a login's password hash
func (r *CredentialRepository) UpdatePassword(username, passwordHash string) error {
	query := "UPDATE credentials SET password_hash = ? WHERE username = ?"
	if _, err := r.db.Exec(query, passwordHash, username); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CountAdmins returns how many admin logins exist, for first-boot setup
func (r *CredentialRepository) CountAdmins() (int, error) {
	query := "SELECT COUNT(*) FROM credentials WHERE is_admin = " + r.db.Dialect.BoolValue(true)
	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
