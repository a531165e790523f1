package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"vacationtrail/internal/engine"
	"vacationtrail/internal/runtime"
	"vacationtrail/internal/service"
	"vacationtrail/internal/validation"
)

// GameHandler handles gameplay HTTP requests
type GameHandler struct {
	game          *service.GameService
	uploadMaxSize int64
	uploadsPath   string
}

// NewGameHandler creates a new game handler
func NewGameHandler(game *service.GameService, uploadMaxSize int64, uploadsPath string) *GameHandler {
	return &GameHandler{
		game:          game,
		uploadMaxSize: uploadMaxSize,
		uploadsPath:   uploadsPath,
	}
}

func pathDay(r *http.Request) (int, error) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		return 0, fmt.Errorf("invalid day: %w", err)
	}
	if err := validation.ValidateDay(day); err != nil {
		return 0, err
	}
	return day, nil
}

// respondGameError maps service errors onto HTTP statuses.
func respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrNoSession):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrAlreadyPlayed),
		errors.Is(err, service.ErrWrongKind),
		errors.Is(err, service.ErrNotOnChoiceTile):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrNotPrivileged):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, runtime.ErrBusy):
		respondWithError(w, http.StatusTooManyRequests, err.Error(), "", nil)
	case errors.Is(err, runtime.ErrNotActive):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Game operation failed", err)
	}
}

// ListChallenges returns every public challenge definition
func (h *GameHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.game.ListChallenges()
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, challenges)
}

// GetChallenge returns one public challenge definition
func (h *GameHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	ch, err := h.game.GetChallenge(day)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ch)
}

// OpenChallenge opens an attempt session
func (h *GameHandler) OpenChallenge(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	snap, err := h.game.OpenChallenge(claims.Username, day)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// StartChallenge begins active play on an instructions-first challenge
func (h *GameHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	snap, err := h.game.StartChallenge(claims.Username, day)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

type tickRequest struct {
	Dt        float64  `json:"dt"`
	Flap      bool     `json:"flap,omitempty"`
	PaddleY   *float64 `json:"paddleY,omitempty"`
	Left      bool     `json:"left,omitempty"`
	Right     bool     `json:"right,omitempty"`
	Jump      bool     `json:"jump,omitempty"`
	FlipIndex *int     `json:"flipIndex,omitempty"`
}

// Tick advances a simulation challenge by one input batch
func (h *GameHandler) Tick(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req tickRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	// Cap dt so a stalled tab cannot fast-forward the simulation.
	if req.Dt <= 0 {
		req.Dt = 1
	}
	if req.Dt > 10 {
		req.Dt = 10
	}

	in := engine.Input{
		Flap:      req.Flap,
		PaddleY:   req.PaddleY,
		Left:      req.Left,
		Right:     req.Right,
		Jump:      req.Jump,
		FlipIndex: req.FlipIndex,
	}
	snap, err := h.game.Tick(claims.Username, day, in, req.Dt)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// SubmitAnswer checks a free-text or unscramble answer
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.game.SubmitAnswer(claims.Username, day, req.Answer)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SubmitGuess scores a five-letter word guess
func (h *GameHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Word string `json:"word"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.game.SubmitGuess(claims.Username, day, req.Word)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SubmitQuizAnswer checks the chosen option for the current quiz question
func (h *GameHandler) SubmitQuizAnswer(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Option int `json:"option"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.game.SubmitQuizAnswer(claims.Username, day, req.Option)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SubmitGroup checks a word-groups selection
func (h *GameHandler) SubmitGroup(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Items []string `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.game.SubmitGroup(claims.Username, day, req.Items)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SubmitCategoryAnswers files the category-word answer sheet for review
func (h *GameHandler) SubmitCategoryAnswers(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	snap, err := h.game.SubmitCategoryAnswers(r.Context(), claims.Username, day, req.Answers)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// SubmitPhoto stores an uploaded photo and settles the photo challenge
func (h *GameHandler) SubmitPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	imageURL, err := h.saveUpload(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "Photo upload failed", err)
		return
	}

	snap, err := h.game.SubmitPhoto(claims.Username, day, imageURL)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// saveUpload stores a multipart photo on disk and returns its public path.
func (h *GameHandler) saveUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil {
		return "", fmt.Errorf("photo too large or malformed")
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", fmt.Errorf("missing photo file")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	if err := os.MkdirAll(h.uploadsPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare uploads directory: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadsPath, name))
	if err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	return "/uploads/" + name, nil
}

// Poll refreshes the attempt view, carrying the category-word draft
func (h *GameHandler) Poll(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Answers map[string]string `json:"answers,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
			return
		}
	}

	snap, err := h.game.Poll(r.Context(), claims.Username, day, req.Answers)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// Abandon walks away from an attempt
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	snap, err := h.game.Abandon(claims.Username, day)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// GetBoard returns the tile layout
func (h *GameHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	tiles, err := h.game.GetBoard()
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tiles)
}

// ListPlayers returns the board roster
func (h *GameHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	players, err := h.game.ListPlayers(claims.Username)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, players)
}

// GetPlayer returns one player's board profile
func (h *GameHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	username := r.PathValue("username")
	player, err := h.game.GetPlayer(claims.Username, username)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, player)
}

// ApplyTileChoice resolves a boost or trap tile against another player
func (h *GameHandler) ApplyTileChoice(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req struct {
		Target string `json:"target"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if err := h.game.ApplyTileChoice(claims.Username, req.Target); err != nil {
		respondGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentLogs returns the newest game history entries
func (h *GameHandler) RecentLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	logs, err := h.game.RecentLogs(limit)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}

// Notifications returns the caller's notification queue
func (h *GameHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	notifications, err := h.game.Notifications(claims.Username)
	if err != nil {
		respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as seen
func (h *GameHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	id := r.PathValue("id")
	if err := h.game.MarkNotificationRead(claims.Username, id); err != nil {
		respondGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkIntroSeen records that the caller dismissed the intro screen
func (h *GameHandler) MarkIntroSeen(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if err := h.game.MarkIntroSeen(claims.Username); err != nil {
		respondGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSelf lets the test account wipe its own progress
func (h *GameHandler) ResetSelf(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if err := h.game.ResetSelf(claims.Username); err != nil {
		respondGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
