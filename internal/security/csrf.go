package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// CSRFGenerator derives CSRF tokens from the session ID with HMAC-SHA256.
// The token is a pure function of session ID and secret, so validation needs
// no server-side token store and survives restarts and multiple replicas.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a generator keyed with the given secret.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token bound to sessionID.
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID is required")
	}
	return hex.EncodeToString(g.sum(sessionID)), nil
}

// ValidateToken checks token against the expected value for sessionID in
// constant time.
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	decoded, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(g.sum(sessionID), decoded)
}

func (g *CSRFGenerator) sum(sessionID string) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	return mac.Sum(nil)
}
