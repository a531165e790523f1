package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vacationtrail/internal/avatar"
	"vacationtrail/internal/config"
	"vacationtrail/internal/database"
	"vacationtrail/internal/handlers"
	"vacationtrail/internal/ledger"
	"vacationtrail/internal/oracle"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/runtime"
	"vacationtrail/internal/security"
	"vacationtrail/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	playerRepo := repository.NewPlayerRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	logRepo := repository.NewLogRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Core game machinery
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionDuration)
	csrf := security.NewCSRFGenerator(cfg.JWTSecret)
	avatars := avatar.New(cfg.AvatarBaseURL)
	attempts := ledger.New(playerRepo)
	answerOracle := oracle.New(challengeRepo)
	attemptRuntime := runtime.New()

	// Initialize services
	notifyService, err := service.NewNotifyService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.ReviewerEmail, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize notify service: %v", err)
	}
	authService := service.NewAuthService(credRepo, playerRepo, settingsRepo, avatars, tokens)
	gameService := service.NewGameService(challengeRepo, playerRepo, boardRepo, subRepo, logRepo, notifRepo,
		attempts, answerOracle, attemptRuntime, notifyService, cfg.TestUsername)
	reviewService := service.NewReviewService(subRepo, playerRepo, logRepo, notifRepo, attempts, gameService, notifyService)
	adminService := service.NewAdminService(db, challengeRepo, boardRepo, settingsRepo, playerRepo, attempts)
	backupService := service.NewBackupService(db)

	if err := authService.Bootstrap(cfg.AdminUsername, cfg.AdminPassword, cfg.TestUsername); err != nil {
		log.Fatalf("Failed to bootstrap accounts: %v", err)
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, csrf, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBaseURL)
	gameHandler := handlers.NewGameHandler(gameService, cfg.UploadMaxSize, cfg.UploadsPath)
	adminHandler := handlers.NewAdminHandler(adminService, reviewService, backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Uploaded photos
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsPath))))

	// Auth
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/session", middleware.RequireAuth(authHandler.Session))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.OAuthCallback)

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(middleware.CSRFProtect(h))
	}

	// Board and roster
	mux.HandleFunc("GET /api/board", middleware.RequireAuth(gameHandler.GetBoard))
	mux.HandleFunc("GET /api/players", middleware.RequireAuth(gameHandler.ListPlayers))
	mux.HandleFunc("GET /api/players/{username}", middleware.RequireAuth(gameHandler.GetPlayer))
	mux.HandleFunc("POST /api/board/choice", protect(gameHandler.ApplyTileChoice))
	mux.HandleFunc("POST /api/players/intro-seen", protect(gameHandler.MarkIntroSeen))
	mux.HandleFunc("POST /api/players/self-reset", protect(gameHandler.ResetSelf))
	mux.HandleFunc("GET /api/logs", middleware.RequireAuth(gameHandler.RecentLogs))
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(gameHandler.Notifications))
	mux.HandleFunc("POST /api/notifications/{id}/read", protect(gameHandler.MarkNotificationRead))

	// Challenges and attempts
	mux.HandleFunc("GET /api/challenges", middleware.RequireAuth(gameHandler.ListChallenges))
	mux.HandleFunc("GET /api/challenges/{day}", middleware.RequireAuth(gameHandler.GetChallenge))
	mux.HandleFunc("POST /api/challenges/{day}/open", protect(gameHandler.OpenChallenge))
	mux.HandleFunc("POST /api/challenges/{day}/start", protect(gameHandler.StartChallenge))
	mux.HandleFunc("POST /api/challenges/{day}/tick", protect(gameHandler.Tick))
	mux.HandleFunc("POST /api/challenges/{day}/answer", protect(gameHandler.SubmitAnswer))
	mux.HandleFunc("POST /api/challenges/{day}/guess", protect(gameHandler.SubmitGuess))
	mux.HandleFunc("POST /api/challenges/{day}/quiz", protect(gameHandler.SubmitQuizAnswer))
	mux.HandleFunc("POST /api/challenges/{day}/group", protect(gameHandler.SubmitGroup))
	mux.HandleFunc("POST /api/challenges/{day}/category", protect(gameHandler.SubmitCategoryAnswers))
	mux.HandleFunc("POST /api/challenges/{day}/photo", protect(gameHandler.SubmitPhoto))
	mux.HandleFunc("POST /api/challenges/{day}/poll", protect(gameHandler.Poll))
	mux.HandleFunc("POST /api/challenges/{day}/abandon", protect(gameHandler.Abandon))

	// Admin
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAdmin(middleware.CSRFProtect(h))
	}
	mux.HandleFunc("POST /api/admin/challenges", admin(adminHandler.SaveChallenge))
	mux.HandleFunc("GET /api/admin/challenges/{day}", middleware.RequireAdmin(adminHandler.GetChallengeDraft))
	mux.HandleFunc("DELETE /api/admin/challenges/{day}", admin(adminHandler.DeleteChallenge))
	mux.HandleFunc("GET /api/admin/reviews", middleware.RequireAdmin(adminHandler.ListPendingReviews))
	mux.HandleFunc("GET /api/admin/reviews/{username}/{day}", middleware.RequireAdmin(adminHandler.GetSubmission))
	mux.HandleFunc("POST /api/admin/reviews/{username}/{day}", admin(adminHandler.ReviewSubmission))
	mux.HandleFunc("GET /api/admin/library", middleware.RequireAdmin(adminHandler.ListLibrary))
	mux.HandleFunc("POST /api/admin/library", admin(adminHandler.AddLibraryItem))
	mux.HandleFunc("PUT /api/admin/board", admin(adminHandler.SaveBoard))
	mux.HandleFunc("POST /api/admin/attempts/{username}/{day}", admin(adminHandler.OverrideAttempt))
	mux.HandleFunc("POST /api/admin/players/{username}/position", admin(adminHandler.SetPlayerPosition))
	mux.HandleFunc("GET /api/admin/settings", middleware.RequireAdmin(adminHandler.GetSettings))
	mux.HandleFunc("PUT /api/admin/settings", admin(adminHandler.UpdateSettings))
	mux.HandleFunc("POST /api/admin/reset", admin(adminHandler.ResetGame))
	mux.HandleFunc("GET /api/admin/backup", middleware.RequireAdmin(adminHandler.ExportBackup))
	mux.HandleFunc("POST /api/admin/backup", admin(adminHandler.ImportBackup))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Drop attempt sessions nobody has touched in a while
	go pruneIdleSessions(attemptRuntime)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// pruneIdleSessions periodically removes abandoned attempt sessions
func pruneIdleSessions(rt *runtime.Runtime) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if removed := rt.Store().PruneIdle(time.Hour, time.Now()); removed > 0 {
			log.Printf("Pruned %d idle attempt sessions", removed)
		}
	}
}
