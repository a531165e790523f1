package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vacationtrail/internal/avatar"
	"vacationtrail/internal/models"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/security"
	"vacationtrail/internal/validation"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRegistrationClosed = errors.New("registration is closed")
)

// AuthService handles authentication business logic
type AuthService struct {
	credRepo     *repository.CredentialRepository
	playerRepo   *repository.PlayerRepository
	settingsRepo *repository.SettingsRepository
	avatars      *avatar.Generator
	tokens       *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(
	credRepo *repository.CredentialRepository,
	playerRepo *repository.PlayerRepository,
	settingsRepo *repository.SettingsRepository,
	avatars *avatar.Generator,
	tokens *security.TokenIssuer,
) *AuthService {
	return &AuthService{
		credRepo:     credRepo,
		playerRepo:   playerRepo,
		settingsRepo: settingsRepo,
		avatars:      avatars,
		tokens:       tokens,
	}
}

// Register creates a new login and its board player
func (s *AuthService) Register(username, fullName, email, password string) (*models.Player, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(fullName); err != nil {
		return nil, err
	}
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	if !s.settingsRepo.IsRegistrationOpen() {
		return nil, ErrRegistrationClosed
	}

	existing, err := s.credRepo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing login: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.credRepo.Create(repository.Credential{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, fmt.Errorf("failed to create login: %w", err)
	}

	player, err := s.playerRepo.CreatePlayer(username, fullName, s.avatars.URL(fullName))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// Login authenticates a user and returns a signed session token
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	cred, err := s.credRepo.GetByUsername(username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get login: %w", err)
	}
	if cred == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, cred.PasswordHash) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(cred.Username, cred.IsAdmin)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue session: %w", err)
	}
	return token, expires, nil
}

// LoginWithEmail matches an OAuth-verified email to an existing login and
// issues a session. Unknown emails are rejected; OAuth cannot self-register.
func (s *AuthService) LoginWithEmail(email string) (string, time.Time, error) {
	cred, err := s.credRepo.GetByEmail(email)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get login by email: %w", err)
	}
	if cred == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(cred.Username, cred.IsAdmin)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue session: %w", err)
	}
	return token, expires, nil
}

// VerifyToken validates a session token and returns its claims
func (s *AuthService) VerifyToken(token string) (*security.SessionClaims, error) {
	return s.tokens.Verify(token)
}

// Bootstrap guarantees an admin login and the test account exist. The test
// account can abandon challenges without penalty; it never appears on the
// board until it registers a player itself.
func (s *AuthService) Bootstrap(adminUsername, adminPassword, testUsername string) error {
	count, err := s.credRepo.CountAdmins()
	if err != nil {
		return err
	}
	if count == 0 {
		if adminPassword == "" {
			return errors.New("no admin exists and ADMIN_PASSWORD is not set")
		}
		hash, err := security.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		if err := s.credRepo.Create(repository.Credential{
			Username:     adminUsername,
			PasswordHash: hash,
			IsAdmin:      true,
		}); err != nil {
			return fmt.Errorf("failed to create admin login: %w", err)
		}
		log.Printf("Bootstrap: created admin login %q", adminUsername)
	}

	if testUsername != "" {
		cred, err := s.credRepo.GetByUsername(testUsername)
		if err != nil {
			return err
		}
		if cred == nil {
			hash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return fmt.Errorf("failed to hash test password: %w", err)
			}
			if err := s.credRepo.Create(repository.Credential{
				Username:     testUsername,
				PasswordHash: hash,
			}); err != nil {
				return fmt.Errorf("failed to create test login: %w", err)
			}
			if _, err := s.playerRepo.CreatePlayer(testUsername, "Tester", s.avatars.URL("Tester")); err != nil {
				return fmt.Errorf("failed to create test player: %w", err)
			}
			log.Printf("Bootstrap: created test account %q with a random password", testUsername)
		}
	}
	return nil
}
