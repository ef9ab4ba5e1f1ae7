package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sport-Tournaments/sport-tournaments-backend/config"
	"github.com/Sport-Tournaments/sport-tournaments-backend/db"
	"github.com/Sport-Tournaments/sport-tournaments-backend/handlers"
	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/middleware"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
	"github.com/Sport-Tournaments/sport-tournaments-backend/routes"
	"github.com/Sport-Tournaments/sport-tournaments-backend/services"
	"github.com/Sport-Tournaments/sport-tournaments-backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	handlers.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Snapshot storage is optional; without it brackets are only served
	// from the database.
	var snapshots *storage.SnapshotStore
	if cfg.SnapshotsEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		snapshots = storage.NewSnapshotStore(uploader)
		logger.Info("bracket snapshot store initialized")
	} else {
		logger.Info("bracket snapshot store disabled (no R2 configuration)")
	}

	hub := live.NewHub()
	go hub.Run()
	logger.Info("live event hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	potRepo := repositories.NewPostgresPotRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	tournamentService := services.NewTournamentService(tournamentRepo, logger)
	drawService := services.NewDrawService(dbConn, tournamentRepo, registrationRepo, groupRepo, potRepo, hub, logger)
	bracketService := services.NewBracketService(tournamentRepo, registrationRepo, groupRepo, matchRepo, bracketRepo, snapshots, hub, logger)
	matchService := services.NewMatchService(dbConn, tournamentRepo, groupRepo, matchRepo, hub, logger)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	go tournamentService.StartStatusUpdateScheduler(schedulerCtx, cfg.StatusUpdateInterval)

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := routes.InitRoutes(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Draw:       handlers.NewDrawHandler(drawService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Match:      handlers.NewMatchHandler(matchService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
	}, auth)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancelScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
