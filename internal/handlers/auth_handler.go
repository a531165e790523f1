package handlers

import (
	"errors"
	"net/http"

	"vacationtrail/internal/security"
	"vacationtrail/internal/service"
	"vacationtrail/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator

	oauthClientID        string
	oauthClientSecret    string
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthClientID, oauthClientSecret, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthClientID:        oauthClientID,
		oauthClientSecret:    oauthClientSecret,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username  string `json:"username"`
	Admin     bool   `json:"admin"`
	CSRFToken string `json:"csrfToken"`
}

// Register handles new player registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	player, err := h.authService.Register(req.Username, req.FullName, req.Email, req.Password)
	if err != nil {
		var verr validation.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		case errors.Is(err, service.ErrUsernameTaken):
			respondWithError(w, http.StatusConflict, err.Error(), "", nil)
		case errors.Is(err, service.ErrRegistrationClosed):
			respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Registration failed", err)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, player)
}

// Login handles login and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	token, expires, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Login failed", err)
		}
		return
	}

	h.finishLogin(w, r, token, expires)
}

// Logout clears the session cookie. Tokens are stateless, so expiring the
// cookie is the whole operation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the current session claims plus a fresh CSRF token, for
// page reloads that still hold a valid cookie.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	csrfToken, err := h.csrf.GenerateToken(claims.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to derive CSRF token", err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{
		Username:  claims.Username,
		Admin:     claims.Admin,
		CSRFToken: csrfToken,
	})
}
