package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"vacationtrail/internal/database"
	"vacationtrail/internal/ledger"
	"vacationtrail/internal/models"
	"vacationtrail/internal/oracle"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/validation"
)

var ErrMissingSolution = errors.New("challenge kind requires answer data")

// ChallengeDraft is the admin's full authoring payload: the public challenge
// plus the hidden answer data. SaveChallenge splits it so the stored public
// document can never verify an answer offline.
type ChallengeDraft struct {
	Challenge models.Challenge `json:"challenge"`
	Solution  models.Solution  `json:"solution"`
}

// AdminService covers challenge authoring, board editing, attempt overrides
// and game settings.
type AdminService struct {
	db            *database.DB
	challengeRepo *repository.ChallengeRepository
	boardRepo     *repository.BoardRepository
	settingsRepo  *repository.SettingsRepository
	playerRepo    *repository.PlayerRepository
	attempts      *ledger.Ledger
	rng           *rand.Rand
}

// NewAdminService creates a new admin service
func NewAdminService(
	db *database.DB,
	challengeRepo *repository.ChallengeRepository,
	boardRepo *repository.BoardRepository,
	settingsRepo *repository.SettingsRepository,
	playerRepo *repository.PlayerRepository,
	attempts *ledger.Ledger,
) *AdminService {
	return &AdminService{
		db:            db,
		challengeRepo: challengeRepo,
		boardRepo:     boardRepo,
		settingsRepo:  settingsRepo,
		playerRepo:    playerRepo,
		attempts:      attempts,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SaveChallenge validates a draft, derives the public display fields from the
// hidden answers, and stores the two documents separately.
func (s *AdminService) SaveChallenge(draft *ChallengeDraft) (*models.Challenge, error) {
	ch := draft.Challenge
	sol := draft.Solution

	if err := validation.ValidateDay(ch.Day); err != nil {
		return nil, err
	}
	if ch.Kind == "" || ch.Question == "" {
		return nil, fmt.Errorf("challenge needs a kind and a question")
	}

	switch ch.Kind {
	case models.KindTextAnswer, models.KindTimedText:
		if len(sol.AnswerKeywords) == 0 {
			return nil, ErrMissingSolution
		}

	case models.KindScramble:
		if sol.ScrambledWord == "" {
			return nil, ErrMissingSolution
		}
		ch.ScrambledDisplay = oracle.ScrambleWord(sol.ScrambledWord, s.rng)

	case models.KindWordGuess:
		if err := validation.ValidateGuessWord(sol.WordTarget); err != nil {
			return nil, ErrMissingSolution
		}

	case models.KindWordGroups:
		if len(sol.ConnectionGroups) == 0 {
			return nil, ErrMissingSolution
		}
		ch.ConnectionItems = shuffledItems(sol.ConnectionGroups, s.rng)

	case models.KindSequentialQuiz:
		// The draft carries CorrectIndex inline on each sub-question; pull
		// the answers into the hidden doc and strip them from the public one.
		if len(ch.SubQuestions) == 0 {
			return nil, ErrMissingSolution
		}
		sol.SubQuestionAnswers = make([]int, len(ch.SubQuestions))
		public := make([]models.SubQuestion, len(ch.SubQuestions))
		for i, q := range ch.SubQuestions {
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return nil, fmt.Errorf("sub-question %d has no valid correct option", i)
			}
			sol.SubQuestionAnswers[i] = q.CorrectIndex
			public[i] = models.SubQuestion{Question: q.Question, Options: q.Options}
		}
		ch.SubQuestions = public
	}

	if ch.Status == "" {
		ch.Status = "ACTIVE"
	}

	if err := s.challengeRepo.Upsert(&ch); err != nil {
		return nil, err
	}
	if err := s.challengeRepo.UpsertSolution(ch.Day, &sol); err != nil {
		return nil, err
	}
	return &ch, nil
}

// shuffledItems flattens the hidden groups into one shuffled public list so
// the item order reveals nothing about group membership.
func shuffledItems(groups []models.ConnectionGroup, rng *rand.Rand) []models.ConnectionItem {
	var items []models.ConnectionItem
	for _, g := range groups {
		for _, word := range g.Items {
			items = append(items, models.ConnectionItem{Word: word})
		}
	}
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items
}

// GetDraft returns a day's challenge with its hidden answers, for editing.
func (s *AdminService) GetDraft(day int) (*ChallengeDraft, error) {
	ch, err := s.challengeRepo.GetByDay(day)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChallengeNotFound
	}
	draft := &ChallengeDraft{Challenge: *ch}
	sol, err := s.challengeRepo.GetSolution(day)
	if err != nil {
		return nil, err
	}
	if sol != nil {
		draft.Solution = *sol
	}
	return draft, nil
}

// DeleteChallenge removes a day's challenge and its answer document.
func (s *AdminService) DeleteChallenge(day int) error {
	return s.challengeRepo.Delete(day)
}

// LibraryList returns the reusable challenge templates.
func (s *AdminService) LibraryList() ([]models.LibraryItem, error) {
	return s.challengeRepo.LibraryList()
}

// LibraryAdd stores a challenge as a reusable template.
func (s *AdminService) LibraryAdd(name string, content models.Challenge) (models.LibraryItem, error) {
	item := models.LibraryItem{
		ID:        uuid.New().String(),
		Name:      name,
		Content:   content,
		Status:    "ACTIVE",
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := s.challengeRepo.LibraryAdd(item); err != nil {
		return models.LibraryItem{}, err
	}
	return item, nil
}

// SaveBoardLayout replaces the tile layout.
func (s *AdminService) SaveBoardLayout(tiles []models.Tile) error {
	if len(tiles) == 0 {
		tiles = models.DefaultBoardLayout()
	}
	return s.boardRepo.SaveLayout(tiles)
}

// OverrideAttempt rewrites a player's recorded outcome for a day, bypassing
// the terminal-outcome lock.
func (s *AdminService) OverrideAttempt(username string, day int, status models.AttemptStatus) (models.Attempt, error) {
	attempt, _, err := s.attempts.Record(username, day, status, true)
	return attempt, err
}

// SetPlayerPosition moves a player directly to a tile.
func (s *AdminService) SetPlayerPosition(username string, position int) error {
	return s.playerRepo.UpdatePosition(username, models.ClampPosition(position))
}

// SetRegistrationOpen opens or closes player registration.
func (s *AdminService) SetRegistrationOpen(open bool) error {
	return s.settingsRepo.SetRegistrationOpen(open)
}

// IsRegistrationOpen reports whether registration is open.
func (s *AdminService) IsRegistrationOpen() bool {
	return s.settingsRepo.IsRegistrationOpen()
}

// SetStartDate stores the game's first day.
func (s *AdminService) SetStartDate(date string) error {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("start date must be YYYY-MM-DD: %w", err)
		}
	}
	return s.settingsRepo.SetStartDate(date)
}

// GetStartDate returns the game's first day, or empty when unset.
func (s *AdminService) GetStartDate() string {
	return s.settingsRepo.GetStartDate()
}

// ResetGame wipes all recorded progress while keeping the authored content
// (challenges, board, library). A hard reset also removes the players
// themselves; only admin logins survive.
func (s *AdminService) ResetGame(hard bool) error {
	// Dependents before their parents.
	tables := []string{"notifications", "game_logs", "category_submissions", "image_submissions", "attempts"}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if hard {
		if _, err := s.db.Exec("DELETE FROM players"); err != nil {
			return fmt.Errorf("failed to clear players: %w", err)
		}
		query := "DELETE FROM credentials WHERE is_admin = " + s.db.Dialect.BoolValue(false)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
		return nil
	}

	if _, err := s.db.Exec("UPDATE players SET position = 1, completed_days = '[]'"); err != nil {
		return fmt.Errorf("failed to reset player progress: %w", err)
	}
	return nil
}
