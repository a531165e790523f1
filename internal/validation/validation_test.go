package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{
			name:     "valid username",
			username: "maria",
			wantErr:  false,
		},
		{
			name:     "valid with digits and dots",
			username: "joao.silva2",
			wantErr:  false,
		},
		{
			name:     "uppercase rejected",
			username: "Maria",
			wantErr:  true,
		},
		{
			name:     "empty string",
			username: "",
			wantErr:  true,
		},
		{
			name:     "too short",
			username: "m",
			wantErr:  true,
		},
		{
			name:     "spaces rejected",
			username: "maria silva",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDay(t *testing.T) {
	tests := []struct {
		name    string
		day     int
		wantErr bool
	}{
		{name: "first day", day: 1, wantErr: false},
		{name: "last calendar day", day: 31, wantErr: false},
		{name: "bonus day", day: 99, wantErr: false},
		{name: "zero", day: 0, wantErr: true},
		{name: "negative", day: -3, wantErr: true},
		{name: "out of range", day: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDay(tt.day)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDay(%d) error = %v, wantErr %v", tt.day, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGuessWord(t *testing.T) {
	tests := []struct {
		name    string
		word    string
		wantErr bool
	}{
		{name: "valid guess", word: "crane", wantErr: false},
		{name: "uppercase allowed", word: "CRANE", wantErr: false},
		{name: "too short", word: "cat", wantErr: true},
		{name: "too long", word: "cranes", wantErr: true},
		{name: "digits rejected", word: "cr4ne", wantErr: true},
		{name: "empty", word: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGuessWord(tt.word)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGuessWord(%q) error = %v, wantErr %v", tt.word, err, tt.wantErr)
			}
		})
	}
}
