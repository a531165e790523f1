package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vacationtrail/internal/security"
	"vacationtrail/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func (h *AuthHandler) oauthConfigured() bool {
	return h.oauthClientID != "" && h.oauthClientSecret != ""
}

func (h *AuthHandler) oauthConfig(r *http.Request) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.oauthClientID,
		ClientSecret: h.oauthClientSecret,
		RedirectURL:  h.oauthRedirectURL(r),
		Scopes:       []string{"openid", "email"},
		Endpoint:     google.Endpoint,
	}
}

// StartOAuth initiates the Google OAuth flow
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.oauthConfigured() {
		respondWithError(w, http.StatusBadRequest, "OAuth is not configured", "", nil)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)

	authURL := h.oauthConfig(r).AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback handles the Google OAuth callback. The verified email must
// belong to an existing login; OAuth never creates accounts.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthConfigured() {
		respondWithError(w, http.StatusBadRequest, "OAuth is not configured", "", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}
	h.clearTempCookie(w, r, "oauth_state")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := h.oauthConfig(r)
	oauthToken, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "", err)
		return
	}

	email, err := fetchGoogleEmail(ctx, oauthToken)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to fetch Google account info", "", err)
		return
	}

	token, expires, err := h.authService.LoginWithEmail(email)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			respondWithError(w, http.StatusUnauthorized, "No account for this Google email", "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "OAuth login failed", err)
		}
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, token, expires))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func fetchGoogleEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user info request returned %d", resp.StatusCode)
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse user info: %w", err)
	}
	if payload.Email == "" {
		return "", fmt.Errorf("Google account has no email")
	}
	return payload.Email, nil
}

// finishLogin sets the session cookie and writes the session response,
// shared by password and OAuth logins.
func (h *AuthHandler) finishLogin(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	claims, err := h.authService.VerifyToken(token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to parse issued token", err)
		return
	}
	csrfToken, err := h.csrf.GenerateToken(claims.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to derive CSRF token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, token, expires))
	respondWithJSON(w, http.StatusOK, sessionResponse{
		Username:  claims.Username,
		Admin:     claims.Admin,
		CSRFToken: csrfToken,
	})
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
