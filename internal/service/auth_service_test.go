package service

import (
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)

	player, err := env.auth.Register("  Eva ", "Eva Lima", "eva@example.com", "password123")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if player.Username != "eva" {
		t.Errorf("Username should be trimmed and lowercased, got %q", player.Username)
	}
	if player.Position != 1 {
		t.Errorf("New players start on tile 1, got %d", player.Position)
	}

	if _, err := env.auth.Register("eva", "Someone Else", "", "password123"); err != ErrUsernameTaken {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}

	token, _, err := env.auth.Login("EVA", "password123")
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}
	claims, err := env.auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if claims.Username != "eva" || claims.Admin {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, _, err := env.auth.Login("eva", "wrong-password"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := env.auth.Login("nobody", "password123"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegistrationClosed(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)

	if err := env.admin.SetRegistrationOpen(false); err != nil {
		t.Fatalf("Failed to close registration: %v", err)
	}
	if _, err := env.auth.Register("late", "Late Comer", "", "password123"); err != ErrRegistrationClosed {
		t.Errorf("Expected ErrRegistrationClosed, got %v", err)
	}
}

func TestLoginWithEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	if _, err := env.auth.Register("fabio", "Fabio Nunes", "fabio@example.com", "password123"); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	token, _, err := env.auth.LoginWithEmail("fabio@example.com")
	if err != nil {
		t.Fatalf("Failed to login by email: %v", err)
	}
	claims, err := env.auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if claims.Username != "fabio" {
		t.Errorf("Expected fabio, got %q", claims.Username)
	}

	// An unknown email never self-registers.
	if _, _, err := env.auth.LoginWithEmail("stranger@example.com"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
