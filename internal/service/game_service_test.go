package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vacationtrail/internal/avatar"
	"vacationtrail/internal/database"
	"vacationtrail/internal/ledger"
	"vacationtrail/internal/models"
	"vacationtrail/internal/oracle"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/runtime"
	"vacationtrail/internal/security"
)

type testEnv struct {
	db       *database.DB
	players  *repository.PlayerRepository
	attempts *ledger.Ledger
	auth     *AuthService
	game     *GameService
	review   *ReviewService
	admin    *AdminService
}

// newTestEnv wires the full service stack against a throwaway SQLite database
// with real migrations, so tests exercise the same paths as production.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	playerRepo := repository.NewPlayerRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	logRepo := repository.NewLogRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	avatars := avatar.New("https://ui-avatars.com/api/")
	attempts := ledger.New(playerRepo)
	orc := oracle.New(challengeRepo)
	rt := runtime.New()

	notify, err := NewNotifyService("us-east-1", "", "", "", "http://localhost:8080")
	if err != nil {
		t.Fatalf("Failed to create notify service: %v", err)
	}

	auth := NewAuthService(credRepo, playerRepo, settingsRepo, avatars, tokens)
	game := NewGameService(challengeRepo, playerRepo, boardRepo, subRepo, logRepo, notifRepo,
		attempts, orc, rt, notify, "")
	review := NewReviewService(subRepo, playerRepo, logRepo, notifRepo, attempts, game, notify)
	admin := NewAdminService(db, challengeRepo, boardRepo, settingsRepo, playerRepo, attempts)

	return &testEnv{
		db:       db,
		players:  playerRepo,
		attempts: attempts,
		auth:     auth,
		game:     game,
		review:   review,
		admin:    admin,
	}
}

func (env *testEnv) registerPlayer(t *testing.T, username, fullName string) {
	t.Helper()
	if _, err := env.auth.Register(username, fullName, "", "password123"); err != nil {
		t.Fatalf("Failed to register %s: %v", username, err)
	}
}

func TestTextAnswerWinFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "ana", "Ana Silva")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      1,
			Kind:     models.KindTextAnswer,
			Question: "Where did we swim on the first day?",
			Points:   3,
		},
		Solution: models.Solution{AnswerKeywords: []string{"praia"}},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	snap, err := env.game.OpenChallenge("ana", 1)
	if err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if snap.Phase != runtime.PhaseActive {
		t.Fatalf("Expected active phase on open, got %s", snap.Phase)
	}

	res, err := env.game.SubmitAnswer("ana", 1, "montanha")
	if err != nil {
		t.Fatalf("Wrong answer submission failed: %v", err)
	}
	if res.Correct {
		t.Error("Wrong answer should not be accepted")
	}
	if res.Snapshot.Phase != runtime.PhaseActive {
		t.Errorf("Wrong answer should leave the attempt running, got %s", res.Snapshot.Phase)
	}

	res, err = env.game.SubmitAnswer("ana", 1, "  PRAIA ")
	if err != nil {
		t.Fatalf("Correct answer submission failed: %v", err)
	}
	if !res.Correct {
		t.Fatal("Normalized correct answer should be accepted")
	}

	attempt, err := env.attempts.Get("ana", 1)
	if err != nil {
		t.Fatalf("Failed to read attempt: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptWin {
		t.Fatalf("Expected recorded WIN, got %+v", attempt)
	}

	player, err := env.players.GetPlayer("ana")
	if err != nil {
		t.Fatalf("Failed to load player: %v", err)
	}
	if player.Position != 4 {
		t.Errorf("Expected position 4 after a 3-point win from tile 1, got %d", player.Position)
	}

	// A settled day cannot be reopened.
	if _, err := env.game.OpenChallenge("ana", 1); err != ErrAlreadyPlayed {
		t.Errorf("Expected ErrAlreadyPlayed on reopen, got %v", err)
	}
}

func TestAbandonRecordsLoss(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "bruno", "Bruno Costa")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      2,
			Kind:     models.KindTextAnswer,
			Question: "What color was the rental car?",
			Points:   2,
		},
		Solution: models.Solution{AnswerKeywords: []string{"vermelho"}},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	if _, err := env.game.OpenChallenge("bruno", 2); err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if _, err := env.game.Abandon("bruno", 2); err != nil {
		t.Fatalf("Failed to abandon: %v", err)
	}

	attempt, err := env.attempts.Get("bruno", 2)
	if err != nil {
		t.Fatalf("Failed to read attempt: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptLoss {
		t.Fatalf("Expected recorded LOSS after abandon, got %+v", attempt)
	}

	player, err := env.players.GetPlayer("bruno")
	if err != nil {
		t.Fatalf("Failed to load player: %v", err)
	}
	if player.Position != 1 {
		t.Errorf("Loss should not move the player, got position %d", player.Position)
	}

	// The session is gone; further submissions have nothing to act on.
	if _, err := env.game.SubmitAnswer("bruno", 2, "vermelho"); err != ErrNoSession {
		t.Errorf("Expected ErrNoSession after abandon, got %v", err)
	}
}

func TestCategoryReviewFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "carla", "Carla Mendes")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      3,
			Kind:     models.KindCategoryWord,
			Question: "Fill the categories with the letter A",
			Letter:   "A",
		},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	snap, err := env.game.OpenChallenge("carla", 3)
	if err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if snap.Phase != runtime.PhaseAwaitingStart {
		t.Fatalf("Category challenge should wait for a manual start, got %s", snap.Phase)
	}
	if _, err := env.game.StartChallenge("carla", 3); err != nil {
		t.Fatalf("Failed to start challenge: %v", err)
	}

	answers := map[string]string{
		"Name":   "Nina",
		"Animal": "Arara",
		"Color":  "Azul",
		"Food":   "Acai",
	}
	if _, err := env.game.SubmitCategoryAnswers(context.Background(), "carla", 3, answers); err != nil {
		t.Fatalf("Failed to submit answer sheet: %v", err)
	}

	attempt, err := env.attempts.Get("carla", 3)
	if err != nil {
		t.Fatalf("Failed to read attempt: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptPending {
		t.Fatalf("Expected PENDING attempt awaiting review, got %+v", attempt)
	}

	// Approve three of four; the skipped category counts as rejected.
	sub, err := env.review.Review(context.Background(), "carla", 3, map[string]models.ValidationState{
		"Animal": models.ValidationApproved,
		"Color":  models.ValidationApproved,
		"Food":   models.ValidationApproved,
	})
	if err != nil {
		t.Fatalf("Failed to apply review: %v", err)
	}
	if sub.Score != 3 {
		t.Errorf("Expected score 3, got %d", sub.Score)
	}
	if sub.Validation["Name"] != models.ValidationRejected {
		t.Errorf("Skipped category should be rejected, got %s", sub.Validation["Name"])
	}

	attempt, err = env.attempts.Get("carla", 3)
	if err != nil {
		t.Fatalf("Failed to read attempt after review: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptWin {
		t.Fatalf("Any approved answer should resolve the attempt as WIN, got %+v", attempt)
	}

	player, err := env.players.GetPlayer("carla")
	if err != nil {
		t.Fatalf("Failed to load player: %v", err)
	}
	if player.Position != 2 {
		t.Errorf("3 approved answers pay 1 tile; expected position 2, got %d", player.Position)
	}

	if _, err := env.review.Review(context.Background(), "carla", 3, nil); err != ErrAlreadyReviewed {
		t.Errorf("Expected ErrAlreadyReviewed on second review, got %v", err)
	}
}

func TestGroupSelectionMustBeFourItems(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "elisa", "Elisa Prado")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:         5,
			Kind:        models.KindWordGroups,
			Question:    "Sort the words",
			GroupsLives: 4,
		},
		Solution: models.Solution{ConnectionGroups: []models.ConnectionGroup{
			{Title: "Beach things", Items: []string{"sand", "towel", "shell", "wave"}},
			{Title: "Camping things", Items: []string{"tent", "fire", "trail", "map"}},
		}},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	if _, err := env.game.OpenChallenge("elisa", 5); err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}

	// Under- and oversized selections are malformed, not wrong guesses.
	for _, items := range [][]string{
		{"sand", "towel"},
		{"sand", "towel", "shell", "wave", "tent"},
		nil,
	} {
		res, err := env.game.SubmitGroup("elisa", 5, items)
		if err != nil {
			t.Fatalf("SubmitGroup(%v) error = %v", items, err)
		}
		if res.Correct {
			t.Errorf("SubmitGroup(%v) accepted a selection of %d items", items, len(items))
		}
		if got := res.Snapshot.State.Groups.Lives; got != 4 {
			t.Errorf("lives = %d after %d-item selection, want 4 untouched", got, len(items))
		}
	}

	// A genuinely wrong four-item guess still costs a life.
	res, err := env.game.SubmitGroup("elisa", 5, []string{"sand", "towel", "shell", "tent"})
	if err != nil {
		t.Fatalf("SubmitGroup() error = %v", err)
	}
	if res.Correct {
		t.Error("Mixed selection should not be accepted")
	}
	if got := res.Snapshot.State.Groups.Lives; got != 3 {
		t.Errorf("lives = %d after wrong guess, want 3", got)
	}
}

func TestReviewWithNoApprovalsStillWins(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "fabio", "Fabio Lima")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      6,
			Kind:     models.KindCategoryWord,
			Question: "Fill the categories with the letter B",
			Letter:   "B",
		},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	if _, err := env.game.OpenChallenge("fabio", 6); err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if _, err := env.game.StartChallenge("fabio", 6); err != nil {
		t.Fatalf("Failed to start challenge: %v", err)
	}
	answers := map[string]string{"Animal": "Cat", "Color": "Red"}
	if _, err := env.game.SubmitCategoryAnswers(context.Background(), "fabio", 6, answers); err != nil {
		t.Fatalf("Failed to submit answer sheet: %v", err)
	}

	// The reviewer rejects everything: the day still settles as a win,
	// just with no movement.
	sub, err := env.review.Review(context.Background(), "fabio", 6, map[string]models.ValidationState{
		"Animal": models.ValidationRejected,
		"Color":  models.ValidationRejected,
	})
	if err != nil {
		t.Fatalf("Failed to apply review: %v", err)
	}
	if sub.Score != 0 {
		t.Errorf("Expected score 0, got %d", sub.Score)
	}

	attempt, err := env.attempts.Get("fabio", 6)
	if err != nil {
		t.Fatalf("Failed to read attempt: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptWin {
		t.Fatalf("Submitting the sheet should settle the day as WIN, got %+v", attempt)
	}

	player, err := env.players.GetPlayer("fabio")
	if err != nil {
		t.Fatalf("Failed to load player: %v", err)
	}
	if player.Position != 1 {
		t.Errorf("Zero approvals pay no tiles; expected position 1, got %d", player.Position)
	}
}

func TestScavengerHuntPhotoFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "gilda", "Gilda Moura")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:           7,
			Kind:          models.KindPhotoScavenger,
			Question:      "Find it and photograph it",
			ScavengerItem: "a blue umbrella",
			Points:        3,
		},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	snap, err := env.game.OpenChallenge("gilda", 7)
	if err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if snap.Phase != runtime.PhaseAwaitingStart {
		t.Fatalf("Scavenger hunt should wait for a manual start, got %s", snap.Phase)
	}
	if _, err := env.game.StartChallenge("gilda", 7); err != nil {
		t.Fatalf("Failed to start the hunt: %v", err)
	}

	// The found object's photo wins the hunt.
	if _, err := env.game.SubmitPhoto("gilda", 7, "/uploads/found.jpg"); err != nil {
		t.Fatalf("Failed to submit photo: %v", err)
	}

	attempt, err := env.attempts.Get("gilda", 7)
	if err != nil {
		t.Fatalf("Failed to read attempt: %v", err)
	}
	if attempt == nil || attempt.Status != models.AttemptWin {
		t.Fatalf("Expected recorded WIN, got %+v", attempt)
	}

	subs, err := env.players.GetImageSubmissions("gilda")
	if err != nil {
		t.Fatalf("Failed to read image submissions: %v", err)
	}
	if len(subs) != 1 || subs[0].ImageURL != "/uploads/found.jpg" {
		t.Errorf("Expected the hunt photo on record, got %+v", subs)
	}
}

func TestOverrideReopensSettledDay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	env.registerPlayer(t, "diego", "Diego Rocha")

	_, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      4,
			Kind:     models.KindTextAnswer,
			Question: "Name the boat",
			Points:   1,
		},
		Solution: models.Solution{AnswerKeywords: []string{"esperanza"}},
	})
	if err != nil {
		t.Fatalf("Failed to save challenge: %v", err)
	}

	if _, err := env.game.OpenChallenge("diego", 4); err != nil {
		t.Fatalf("Failed to open challenge: %v", err)
	}
	if _, err := env.game.Abandon("diego", 4); err != nil {
		t.Fatalf("Failed to abandon: %v", err)
	}

	// A loss is final for the player, but the admin override unsticks it.
	if _, err := env.game.OpenChallenge("diego", 4); err != ErrAlreadyPlayed {
		t.Fatalf("Expected ErrAlreadyPlayed, got %v", err)
	}
	if _, err := env.admin.OverrideAttempt("diego", 4, models.AttemptPending); err != nil {
		t.Fatalf("Failed to override attempt: %v", err)
	}
	if _, err := env.game.OpenChallenge("diego", 4); err != nil {
		t.Errorf("Expected reopen after override, got %v", err)
	}
}
