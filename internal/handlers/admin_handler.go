package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"vacationtrail/internal/models"
	"vacationtrail/internal/service"
)

// AdminHandler handles the admin HTTP surface: challenge authoring, reviews,
// board editing, settings and backups.
type AdminHandler struct {
	admin  *service.AdminService
	review *service.ReviewService
	backup *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService, review *service.ReviewService, backup *service.BackupService) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		review: review,
		backup: backup,
	}
}

// SaveChallenge stores a challenge draft, splitting public and hidden data
func (h *AdminHandler) SaveChallenge(w http.ResponseWriter, r *http.Request) {
	var draft service.ChallengeDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	ch, err := h.admin.SaveChallenge(&draft)
	if err != nil {
		if errors.Is(err, service.ErrMissingSolution) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save challenge", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, ch)
}

// GetChallengeDraft returns a challenge with its hidden answers for editing
func (h *AdminHandler) GetChallengeDraft(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	draft, err := h.admin.GetDraft(day)
	if err != nil {
		if errors.Is(err, service.ErrChallengeNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load draft", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// DeleteChallenge removes a day's challenge
func (h *AdminHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if err := h.admin.DeleteChallenge(day); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete challenge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPendingReviews returns answer sheets waiting for a verdict
func (h *AdminHandler) ListPendingReviews(w http.ResponseWriter, r *http.Request) {
	pending, err := h.review.ListPending()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list reviews", err)
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}

// GetSubmission returns one answer sheet
func (h *AdminHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	sub, err := h.review.Get(username, day)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load submission", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// ReviewSubmission applies per-category verdicts to an answer sheet
func (h *AdminHandler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Validation map[string]models.ValidationState `json:"validation"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	sub, err := h.review.Review(r.Context(), username, day, req.Validation)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
		case errors.Is(err, service.ErrAlreadyReviewed):
			respondWithError(w, http.StatusConflict, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to apply review", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// ListLibrary returns the reusable challenge templates
func (h *AdminHandler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := h.admin.LibraryList()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list library", err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

// AddLibraryItem stores a challenge template
func (h *AdminHandler) AddLibraryItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string           `json:"name"`
		Content models.Challenge `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Template name is required", "", nil)
		return
	}

	item, err := h.admin.LibraryAdd(req.Name, req.Content)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to add library item", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// SaveBoard replaces the tile layout
func (h *AdminHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	var tiles []models.Tile
	if err := decodeJSON(r, &tiles); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if err := h.admin.SaveBoardLayout(tiles); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save board", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverrideAttempt rewrites a player's recorded outcome
func (h *AdminHandler) OverrideAttempt(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	day, err := pathDay(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	var req struct {
		Status models.AttemptStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	attempt, err := h.admin.OverrideAttempt(username, day, req.Status)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to override attempt", err)
		return
	}
	respondWithJSON(w, http.StatusOK, attempt)
}

// SetPlayerPosition moves a player directly to a tile
func (h *AdminHandler) SetPlayerPosition(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req struct {
		Position int `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if err := h.admin.SetPlayerPosition(username, req.Position); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to move player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns the editable game settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"registrationOpen": h.admin.IsRegistrationOpen(),
		"startDate":        h.admin.GetStartDate(),
	})
}

// UpdateSettings stores the editable game settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RegistrationOpen *bool   `json:"registrationOpen,omitempty"`
		StartDate        *string `json:"startDate,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if req.RegistrationOpen != nil {
		if err := h.admin.SetRegistrationOpen(*req.RegistrationOpen); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update registration", err)
			return
		}
	}
	if req.StartDate != nil {
		if err := h.admin.SetStartDate(*req.StartDate); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetGame wipes all progress; with {"hard": true} it also removes players
func (h *AdminHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hard bool `json:"hard"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	if err := h.admin.ResetGame(req.Hard); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to reset game", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportBackup streams a full database backup
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("vacationtrail-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := h.backup.ExportToWriter(w); err != nil {
		// Headers are already out; all that is left is the log line.
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Backup export failed", err)
	}
}

// ImportBackup restores the database from an uploaded backup
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.backup.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Backup import failed", "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
