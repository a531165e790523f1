package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vacationtrail/internal/engine"
	"vacationtrail/internal/ledger"
	"vacationtrail/internal/models"
	"vacationtrail/internal/oracle"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/runtime"
	"vacationtrail/internal/validation"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrAlreadyPlayed     = errors.New("challenge already has a final outcome")
	ErrNoSession         = errors.New("no active attempt for this challenge")
	ErrWrongKind         = errors.New("operation does not apply to this challenge kind")
	ErrNotOnChoiceTile   = errors.New("player is not on a boost or trap tile")
	ErrNotPrivileged     = errors.New("only the test account may do that")
)

// GameService orchestrates one attempt from open to recorded outcome: it
// loads challenge definitions, drives the attempt runtime, asks the oracle
// about submissions, and settles verdicts into the ledger and board.
type GameService struct {
	challengeRepo *repository.ChallengeRepository
	playerRepo    *repository.PlayerRepository
	boardRepo     *repository.BoardRepository
	subRepo       *repository.SubmissionRepository
	logRepo       *repository.LogRepository
	notifRepo     *repository.NotificationRepository

	attempts *ledger.Ledger
	overlay  *ledger.Overlay
	oracle   *oracle.Oracle
	runtime  *runtime.Runtime
	notify   *NotifyService

	testUsername string
}

// NewGameService creates a new game service
func NewGameService(
	challengeRepo *repository.ChallengeRepository,
	playerRepo *repository.PlayerRepository,
	boardRepo *repository.BoardRepository,
	subRepo *repository.SubmissionRepository,
	logRepo *repository.LogRepository,
	notifRepo *repository.NotificationRepository,
	attempts *ledger.Ledger,
	orc *oracle.Oracle,
	rt *runtime.Runtime,
	notify *NotifyService,
	testUsername string,
) *GameService {
	return &GameService{
		challengeRepo: challengeRepo,
		playerRepo:    playerRepo,
		boardRepo:     boardRepo,
		subRepo:       subRepo,
		logRepo:       logRepo,
		notifRepo:     notifRepo,
		attempts:      attempts,
		overlay:       ledger.NewOverlay(),
		oracle:        orc,
		runtime:       rt,
		notify:        notify,
		testUsername:  testUsername,
	}
}

// privileged reports whether a username gets test-account powers: free
// abandons and replaying settled days.
func (s *GameService) privileged(username string) bool {
	return s.testUsername != "" && username == s.testUsername
}

// SubmitResult is the response to an oracle-checked submission.
type SubmitResult struct {
	Correct  bool                `json:"correct"`
	Marks    []models.LetterMark `json:"marks,omitempty"`
	Title    string              `json:"groupTitle,omitempty"`
	Snapshot runtime.Snapshot    `json:"session"`
}

// OpenChallenge starts (or restarts) an attempt at a challenge day and
// returns the initial session view. Days with a final recorded outcome
// cannot be reopened, except by the test account.
func (s *GameService) OpenChallenge(username string, day int) (runtime.Snapshot, error) {
	if err := validation.ValidateDay(day); err != nil {
		return runtime.Snapshot{}, err
	}

	ch, err := s.challengeRepo.GetByDay(day)
	if err != nil {
		return runtime.Snapshot{}, fmt.Errorf("failed to load challenge: %w", err)
	}
	if ch == nil {
		return runtime.Snapshot{}, ErrChallengeNotFound
	}

	if !s.privileged(username) {
		attempt, err := s.attempts.Get(username, day)
		if err != nil {
			return runtime.Snapshot{}, err
		}
		if attempt != nil && attempt.Status.Terminal() {
			return runtime.Snapshot{}, ErrAlreadyPlayed
		}
	}

	sess, err := s.runtime.Open(username, ch)
	if err != nil {
		return runtime.Snapshot{}, err
	}
	log.Printf("Attempt opened: user=%s day=%d kind=%s", username, day, ch.Kind)
	return s.runtime.View(sess), nil
}

// StartChallenge moves an instructions-first attempt into active play.
func (s *GameService) StartChallenge(username string, day int) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}
	if err := s.runtime.Start(sess); err != nil {
		return runtime.Snapshot{}, err
	}
	return s.runtime.View(sess), nil
}

// Tick applies a batch of raw input to a simulation attempt and returns the
// updated view, settling the outcome if this tick ended the run.
func (s *GameService) Tick(username string, day int, in engine.Input, dt float64) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}
	if err := s.runtime.Advance(sess, in, dt); err != nil && !errors.Is(err, runtime.ErrNotActive) {
		return runtime.Snapshot{}, err
	}
	s.settle(sess)
	return s.runtime.View(sess), nil
}

// SubmitAnswer checks a free-text or unscramble answer. A correct answer
// wins; a wrong one leaves the attempt running so the player may retry
// until the clock (if any) runs out.
func (s *GameService) SubmitAnswer(username string, day int, answer string) (SubmitResult, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return SubmitResult{}, ErrNoSession
	}

	var verify func(int, string) (bool, error)
	switch sess.Challenge.Kind {
	case models.KindTextAnswer, models.KindTimedText:
		verify = s.oracle.VerifyText
	case models.KindScramble:
		verify = s.oracle.VerifyScramble
	default:
		return SubmitResult{}, ErrWrongKind
	}

	if err := s.runtime.BeginVerify(sess); err != nil {
		return SubmitResult{}, err
	}
	correct, err := verify(day, answer)
	s.runtime.EndVerify(sess)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to verify answer: %w", err)
	}

	if correct {
		if err := s.runtime.Finish(sess, engine.OutcomeWin); err != nil {
			return SubmitResult{}, err
		}
		s.settle(sess)
	}
	return SubmitResult{Correct: correct, Snapshot: s.runtime.View(sess)}, nil
}

// SubmitGuess scores a five-letter word guess and feeds the marks to the
// word-guess engine.
func (s *GameService) SubmitGuess(username string, day int, word string) (SubmitResult, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return SubmitResult{}, ErrNoSession
	}
	if sess.Challenge.Kind != models.KindWordGuess {
		return SubmitResult{}, ErrWrongKind
	}
	if err := validation.ValidateGuessWord(word); err != nil {
		return SubmitResult{}, err
	}

	if err := s.runtime.BeginVerify(sess); err != nil {
		return SubmitResult{}, err
	}
	marks, solved, err := s.oracle.ScoreWordGuess(day, word)
	s.runtime.EndVerify(sess)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to score guess: %w", err)
	}

	in := engine.Input{GuessWord: word, GuessMarks: marks, GuessSolved: solved}
	if err := s.runtime.Advance(sess, in, 0); err != nil {
		return SubmitResult{}, err
	}
	s.settle(sess)
	return SubmitResult{Correct: solved, Marks: marks, Snapshot: s.runtime.View(sess)}, nil
}

// SubmitQuizAnswer checks the chosen option for the quiz question currently
// on screen. The question index comes from server state, never the client.
func (s *GameService) SubmitQuizAnswer(username string, day int, optionIndex int) (SubmitResult, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return SubmitResult{}, ErrNoSession
	}
	if sess.Challenge.Kind != models.KindSequentialQuiz {
		return SubmitResult{}, ErrWrongKind
	}

	view := s.runtime.View(sess)
	if view.State == nil || view.State.Quiz == nil {
		return SubmitResult{}, ErrNoSession
	}
	questionIndex := view.State.Quiz.Index

	if err := s.runtime.BeginVerify(sess); err != nil {
		return SubmitResult{}, err
	}
	correct, err := s.oracle.VerifyQuizAnswer(day, questionIndex, optionIndex)
	s.runtime.EndVerify(sess)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to verify quiz answer: %w", err)
	}

	in := engine.Input{QuizOption: &optionIndex, QuizCorrect: correct}
	if err := s.runtime.Advance(sess, in, 0); err != nil {
		return SubmitResult{}, err
	}
	s.settle(sess)
	return SubmitResult{Correct: correct, Snapshot: s.runtime.View(sess)}, nil
}

// SubmitGroup checks a four-item selection against the hidden groups.
func (s *GameService) SubmitGroup(username string, day int, items []string) (SubmitResult, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return SubmitResult{}, ErrNoSession
	}
	if sess.Challenge.Kind != models.KindWordGroups {
		return SubmitResult{}, ErrWrongKind
	}

	// Groups are always four items. Anything else is a malformed selection,
	// not a wrong guess, so it costs no life.
	if len(items) != 4 {
		return SubmitResult{Snapshot: s.runtime.View(sess)}, nil
	}

	if err := s.runtime.BeginVerify(sess); err != nil {
		return SubmitResult{}, err
	}
	title, correct, err := s.oracle.VerifyGroup(day, items)
	s.runtime.EndVerify(sess)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to verify group: %w", err)
	}

	in := engine.Input{GroupItems: items, GroupTitle: title, GroupCorrect: &correct}
	if err := s.runtime.Advance(sess, in, 0); err != nil {
		return SubmitResult{}, err
	}
	s.settle(sess)
	return SubmitResult{Correct: correct, Title: title, Snapshot: s.runtime.View(sess)}, nil
}

// SubmitCategoryAnswers files a category-word answer sheet for human review.
// The attempt settles as PENDING; the reviewer's verdict resolves it later.
func (s *GameService) SubmitCategoryAnswers(ctx context.Context, username string, day int, answers map[string]string) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}
	if sess.Challenge.Kind != models.KindCategoryWord {
		return runtime.Snapshot{}, ErrWrongKind
	}

	if err := s.fileCategorySubmission(ctx, sess, answers); err != nil {
		return runtime.Snapshot{}, err
	}
	return s.runtime.View(sess), nil
}

func (s *GameService) fileCategorySubmission(ctx context.Context, sess *runtime.Session, answers map[string]string) error {
	if answers == nil {
		answers = map[string]string{}
	}
	validationStates := make(map[string]models.ValidationState, len(answers))
	for category := range answers {
		validationStates[category] = models.ValidationPending
	}

	sub := &models.CategorySubmission{
		Username:    sess.Username,
		Day:         sess.Day,
		Answers:     answers,
		Validation:  validationStates,
		Status:      "PENDING",
		SubmittedAt: time.Now(),
	}
	if err := s.subRepo.Create(sub); err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}

	if err := s.runtime.Finish(sess, engine.OutcomePending); err != nil && !errors.Is(err, runtime.ErrNotActive) {
		return err
	}
	s.settle(sess)

	// The reviewer email is best-effort; a mail outage must not lose the
	// submission that is already stored.
	if err := s.notify.SendSubmissionForReview(ctx, sub); err != nil {
		log.Printf("Failed to notify reviewer for %s day %d: %v", sess.Username, sess.Day, err)
	}

	s.appendLog(models.GameLog{
		Username: sess.Username,
		Day:      sess.Day,
		Action:   models.LogCategorySubmit,
		Details:  fmt.Sprintf("%d answers submitted for review", len(answers)),
	})
	return nil
}

// SubmitPhoto stores an uploaded photo and settles the attempt as a
// trust-based win. Scavenger hunts end the same way: the photo of the found
// object arrives after the hunting phase.
func (s *GameService) SubmitPhoto(username string, day int, imageURL string) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}
	if sess.Challenge.Kind != models.KindPhotoUpload && sess.Challenge.Kind != models.KindPhotoScavenger {
		return runtime.Snapshot{}, ErrWrongKind
	}

	sub := models.ImageSubmission{Day: day, ImageURL: imageURL, SubmittedAt: time.Now()}
	if err := s.playerRepo.AddImageSubmission(username, sub); err != nil {
		return runtime.Snapshot{}, fmt.Errorf("failed to store photo: %w", err)
	}
	s.appendLog(models.GameLog{
		Username: username,
		Day:      day,
		Action:   models.LogImageSubmit,
	})

	if err := s.runtime.Finish(sess, engine.OutcomeWin); err != nil {
		return runtime.Snapshot{}, err
	}
	s.settle(sess)
	return s.runtime.View(sess), nil
}

// Poll refreshes the session view. It also carries the client's current
// category-word draft so an expired clock can auto-submit whatever the
// player had typed.
func (s *GameService) Poll(ctx context.Context, username string, day int, draftAnswers map[string]string) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}

	if s.runtime.AutoSubmitDue(sess) {
		if err := s.fileCategorySubmission(ctx, sess, draftAnswers); err != nil {
			// The sheet is gone but the attempt must still settle.
			log.Printf("Auto-submit failed for %s day %d: %v", username, day, err)
		}
	}

	s.settle(sess)
	return s.runtime.View(sess), nil
}

// Abandon walks away from an attempt. That is a recorded loss, unless the
// caller is the test account.
func (s *GameService) Abandon(username string, day int) (runtime.Snapshot, error) {
	sess, ok := s.runtime.Get(username, day)
	if !ok {
		return runtime.Snapshot{}, ErrNoSession
	}

	outcome := s.runtime.Abandon(sess, s.privileged(username))
	if outcome != engine.OutcomeNone {
		s.settle(sess)
	}
	view := s.runtime.View(sess)
	s.runtime.Close(sess)
	return view, nil
}

// settle moves a freshly terminal outcome out of the runtime and into the
// permanent record: ledger entry, board movement, tile effects, and logs.
// The runtime emits each outcome exactly once, so settle is safe to call on
// every touch.
func (s *GameService) settle(sess *runtime.Session) {
	outcome, ok := s.runtime.ConsumeOutcome(sess)
	if !ok {
		return
	}
	if err := s.applyOutcome(sess, outcome); err != nil {
		log.Printf("Failed to settle outcome %s for %s day %d: %v", outcome, sess.Username, sess.Day, err)
	}
}

func (s *GameService) applyOutcome(sess *runtime.Session, outcome engine.Outcome) error {
	username, day := sess.Username, sess.Day

	var status models.AttemptStatus
	switch outcome {
	case engine.OutcomeWin:
		status = models.AttemptWin
	case engine.OutcomeLoss:
		status = models.AttemptLoss
	case engine.OutcomePending:
		status = models.AttemptPending
	default:
		return fmt.Errorf("unexpected outcome %q", outcome)
	}

	attempt, changed, err := s.attempts.Record(username, day, status, s.privileged(username))
	if errors.Is(err, ledger.ErrOutcomeLocked) {
		log.Printf("Outcome for %s day %d already final; keeping %s", username, day, attempt.Status)
		return nil
	}
	if err != nil {
		return err
	}
	s.overlay.Put(username, day, attempt)
	if !changed {
		return nil
	}

	switch status {
	case models.AttemptWin:
		if err := s.awardWin(sess); err != nil {
			return err
		}
	case models.AttemptLoss:
		s.appendLog(models.GameLog{Username: username, Day: day, Action: models.LogLoss})
	}
	return nil
}

// awardWin moves the winner forward and applies whatever tile they land on.
func (s *GameService) awardWin(sess *runtime.Session) error {
	username, day, ch := sess.Username, sess.Day, sess.Challenge

	reward := ch.Points
	if ch.Kind == models.KindSequentialQuiz {
		if view := s.runtime.View(sess); view.State != nil && view.State.Quiz != nil {
			reward = view.State.Quiz.Score
		}
	}

	player, err := s.playerRepo.GetPlayer(username)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrPlayerNotFound
	}

	newPos, err := s.movePlayer(username, player.Position, reward)
	if err != nil {
		return err
	}
	if err := s.playerRepo.AddCompletedDay(username, day); err != nil {
		return err
	}
	s.appendLog(models.GameLog{
		Username: username,
		Day:      day,
		Action:   models.LogWin,
		Details:  fmt.Sprintf("moved to tile %d (+%d)", newPos, reward),
	})
	return nil
}

// movePlayer shifts a player by delta tiles, clamps to the track, applies
// landing effects, and persists the final position.
func (s *GameService) movePlayer(username string, fromPos, delta int) (int, error) {
	pos := models.ClampPosition(fromPos + delta)

	tile, err := s.boardRepo.GetTile(pos)
	if err != nil {
		return 0, err
	}
	if tile != nil {
		switch tile.Type {
		case models.TileForwardOne:
			pos = models.ClampPosition(pos + 1)
			s.appendLog(models.GameLog{Username: username, Action: models.LogAutoForward,
				Details: fmt.Sprintf("turbo tile pushed to %d", pos)})
		case models.TileBackOne:
			pos = models.ClampPosition(pos - 1)
			s.appendLog(models.GameLog{Username: username, Action: models.LogAutoBack,
				Details: fmt.Sprintf("slide tile pulled back to %d", pos)})
		case models.TileExtraChallenge:
			if _, err := s.notifRepo.Add(username,
				fmt.Sprintf("You landed on a bonus tile! A secret extra challenge (day %d) is waiting.", models.BonusDay)); err != nil {
				log.Printf("Failed to queue bonus notification for %s: %v", username, err)
			}
			s.appendLog(models.GameLog{Username: username, Action: models.LogTileInteraction,
				Details: "bonus challenge unlocked"})
		case models.TileChooseForward:
			if _, err := s.notifRepo.Add(username,
				"Boost tile! Pick a friend to push one space forward."); err != nil {
				log.Printf("Failed to queue boost notification for %s: %v", username, err)
			}
		case models.TileChooseBack:
			if _, err := s.notifRepo.Add(username,
				"Trap tile! Pick a rival to drag one space back."); err != nil {
				log.Printf("Failed to queue trap notification for %s: %v", username, err)
			}
		}
	}

	if err := s.playerRepo.UpdatePosition(username, pos); err != nil {
		return 0, err
	}
	return pos, nil
}

// ApplyTileChoice resolves a boost or trap tile: the player standing on the
// tile picks another player to move one space forward or back.
func (s *GameService) ApplyTileChoice(username, targetUsername string) error {
	if username == targetUsername {
		return errors.New("cannot target yourself")
	}

	player, err := s.playerRepo.GetPlayer(username)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrPlayerNotFound
	}
	tile, err := s.boardRepo.GetTile(player.Position)
	if err != nil {
		return err
	}
	if tile == nil || (tile.Type != models.TileChooseForward && tile.Type != models.TileChooseBack) {
		return ErrNotOnChoiceTile
	}

	target, err := s.playerRepo.GetPlayer(targetUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrPlayerNotFound
	}

	if tile.Type == models.TileChooseForward {
		newPos := models.ClampPosition(target.Position + 1)
		if err := s.playerRepo.UpdatePosition(targetUsername, newPos); err != nil {
			return err
		}
		if _, err := s.notifRepo.Add(targetUsername,
			fmt.Sprintf("%s boosted you one space forward!", player.FullName)); err != nil {
			log.Printf("Failed to queue boost notification for %s: %v", targetUsername, err)
		}
		s.appendLog(models.GameLog{Username: username, TargetUser: targetUsername,
			Action: models.LogBoost, Details: fmt.Sprintf("boosted to tile %d", newPos)})
	} else {
		newPos := models.ClampPosition(target.Position - 1)
		if err := s.playerRepo.UpdatePosition(targetUsername, newPos); err != nil {
			return err
		}
		if _, err := s.notifRepo.Add(targetUsername,
			fmt.Sprintf("%s trapped you one space back!", player.FullName)); err != nil {
			log.Printf("Failed to queue trap notification for %s: %v", targetUsername, err)
		}
		s.appendLog(models.GameLog{Username: username, TargetUser: targetUsername,
			Action: models.LogTrap, Details: fmt.Sprintf("dragged back to tile %d", newPos)})
	}
	return nil
}

// appendLog writes a game log entry, logging instead of failing on error.
func (s *GameService) appendLog(entry models.GameLog) {
	if _, err := s.logRepo.Append(entry); err != nil {
		log.Printf("Failed to append game log (%s %s): %v", entry.Username, entry.Action, err)
	}
}

// GetBoard returns the tile layout.
func (s *GameService) GetBoard() ([]models.Tile, error) {
	tiles, err := s.boardRepo.GetTiles()
	if err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		tiles = models.DefaultBoardLayout()
	}
	return tiles, nil
}

// ListPlayers returns the board roster. For the requesting player the
// attempt map is merged with the optimistic overlay, so a verdict shows up
// immediately even if the confirming read races the write.
func (s *GameService) ListPlayers(viewer string) ([]models.Player, error) {
	players, err := s.playerRepo.ListPlayers()
	if err != nil {
		return nil, err
	}
	for i := range players {
		if players[i].Username == viewer {
			players[i].Attempts = s.overlay.Merge(viewer, players[i].Attempts)
		}
	}
	return players, nil
}

// GetPlayer returns one player with overlay-merged attempts when viewing
// yourself.
func (s *GameService) GetPlayer(viewer, username string) (*models.Player, error) {
	player, err := s.playerRepo.GetPlayer(username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if viewer == username {
		player.Attempts = s.overlay.Merge(viewer, player.Attempts)
	}
	return player, nil
}

// ListChallenges returns every challenge definition (public fields only).
func (s *GameService) ListChallenges() ([]models.Challenge, error) {
	return s.challengeRepo.List()
}

// GetChallenge returns one public challenge definition.
func (s *GameService) GetChallenge(day int) (*models.Challenge, error) {
	ch, err := s.challengeRepo.GetByDay(day)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChallengeNotFound
	}
	return ch, nil
}

// RecentLogs returns the newest game log entries.
func (s *GameService) RecentLogs(limit int) ([]models.GameLog, error) {
	return s.logRepo.ListRecent(limit)
}

// Notifications returns a player's notification queue.
func (s *GameService) Notifications(username string) ([]models.Notification, error) {
	return s.notifRepo.List(username)
}

// MarkNotificationRead marks one notification as seen.
func (s *GameService) MarkNotificationRead(username, id string) error {
	return s.notifRepo.MarkRead(username, id)
}

// MarkIntroSeen records that a player has dismissed the intro screen.
func (s *GameService) MarkIntroSeen(username string) error {
	return s.playerRepo.MarkIntroSeen(username)
}

// ResetSelf wipes the test account's own progress so it can replay the game
// from the start. Regular players cannot reset themselves.
func (s *GameService) ResetSelf(username string) error {
	if !s.privileged(username) {
		return ErrNotPrivileged
	}
	if err := s.playerRepo.DeleteAttempts(username); err != nil {
		return err
	}
	if err := s.playerRepo.ResetProgress(username); err != nil {
		return err
	}
	s.overlay.Clear()
	s.appendLog(models.GameLog{Username: username, Action: models.LogReset, Details: "self reset"})
	return nil
}
