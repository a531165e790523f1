package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vacationtrail/internal/ledger"
	"vacationtrail/internal/models"
	"vacationtrail/internal/repository"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyReviewed    = errors.New("submission already reviewed")
)

// ReviewService applies human verdicts to category-word answer sheets. A
// review resolves the player's PENDING attempt, pays out movement, and closes
// the email loop.
type ReviewService struct {
	subRepo    *repository.SubmissionRepository
	playerRepo *repository.PlayerRepository
	logRepo    *repository.LogRepository
	notifRepo  *repository.NotificationRepository
	attempts   *ledger.Ledger
	game       *GameService
	notify     *NotifyService
}

// NewReviewService creates a new review service
func NewReviewService(
	subRepo *repository.SubmissionRepository,
	playerRepo *repository.PlayerRepository,
	logRepo *repository.LogRepository,
	notifRepo *repository.NotificationRepository,
	attempts *ledger.Ledger,
	game *GameService,
	notify *NotifyService,
) *ReviewService {
	return &ReviewService{
		subRepo:    subRepo,
		playerRepo: playerRepo,
		logRepo:    logRepo,
		notifRepo:  notifRepo,
		attempts:   attempts,
		game:       game,
		notify:     notify,
	}
}

// ListPending returns every answer sheet still waiting for a verdict,
// oldest first.
func (s *ReviewService) ListPending() ([]models.CategorySubmission, error) {
	return s.subRepo.ListPending()
}

// Get returns one submission by player and day.
func (s *ReviewService) Get(username string, day int) (*models.CategorySubmission, error) {
	sub, err := s.subRepo.Get(username, day)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// Review applies the reviewer's per-category verdicts: the submission is
// scored and closed, the pending attempt resolves as a win, and the player
// moves one tile per three approved answers. Filing the sheet settles the
// day; a fully rejected sheet just pays no movement.
func (s *ReviewService) Review(ctx context.Context, username string, day int, verdicts map[string]models.ValidationState) (*models.CategorySubmission, error) {
	sub, err := s.subRepo.Get(username, day)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status == "COMPLETED" {
		return nil, ErrAlreadyReviewed
	}

	for category, verdict := range verdicts {
		if _, ok := sub.Answers[category]; !ok {
			return nil, fmt.Errorf("verdict for unknown category %q", category)
		}
		if verdict != models.ValidationApproved && verdict != models.ValidationRejected {
			return nil, fmt.Errorf("invalid verdict %q for category %q", verdict, category)
		}
		sub.Validation[category] = verdict
	}
	// Anything the reviewer skipped counts as rejected.
	for category, state := range sub.Validation {
		if state == models.ValidationPending {
			sub.Validation[category] = models.ValidationRejected
		}
	}

	approved := sub.ApprovedCount()
	reward := sub.MovementReward()
	sub.Score = approved
	sub.Status = "COMPLETED"
	if err := s.subRepo.Update(sub); err != nil {
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	if _, err := s.attempts.Resolve(username, day, models.AttemptWin); err != nil {
		return nil, fmt.Errorf("failed to resolve attempt: %w", err)
	}

	if reward > 0 {
		player, err := s.playerRepo.GetPlayer(username)
		if err != nil {
			return nil, err
		}
		if player != nil {
			if _, err := s.game.movePlayer(username, player.Position, reward); err != nil {
				return nil, err
			}
		}
	}
	if err := s.playerRepo.AddCompletedDay(username, day); err != nil {
		return nil, err
	}

	if _, err := s.logRepo.Append(models.GameLog{
		Username: username,
		Day:      day,
		Action:   models.LogWin,
		Details:  fmt.Sprintf("review: %d approved, %d tiles", approved, reward),
	}); err != nil {
		log.Printf("Failed to append review log for %s day %d: %v", username, day, err)
	}

	message := fmt.Sprintf("Your day %d answer sheet was reviewed: %d approved, %d tiles.", day, approved, reward)
	if _, err := s.notifRepo.Add(username, message); err != nil {
		log.Printf("Failed to queue review notification for %s day %d: %v", username, day, err)
	}
	if err := s.notify.SendReviewComplete(ctx, username, day, approved, reward); err != nil {
		log.Printf("Failed to send review-complete email for %s day %d: %v", username, day, err)
	}

	log.Printf("Review applied: user=%s day=%d approved=%d reward=%d",
		username, day, approved, reward)
	return sub, nil
}
