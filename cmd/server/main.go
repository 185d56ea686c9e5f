package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"recovery-assistant/internal/config"
	"recovery-assistant/internal/core"
	"recovery-assistant/internal/db"
	httpserver "recovery-assistant/internal/http"
	"recovery-assistant/internal/llm"
	"recovery-assistant/internal/remind"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("configuration")
	}

	log := newLogger(cfg)

	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := dbConn.PingContext(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("ping database")
	}
	cancel()
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	repo := db.NewRepository(dbConn)
	notifier := db.NewNotifier(dbConn, cfg.DatabaseURL, cfg.NotifyChannel)

	llmClient := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
	analyzer := &core.Analyzer{LLM: llmClient, Log: log.With().Str("component", "analyzer").Logger()}
	chatService := core.NewChatService(llmClient, repo, notifier, log.With().Str("component", "chat").Logger())
	uploadService := core.NewUploadService(analyzer, repo, cfg.UploadDir, log.With().Str("component", "upload").Logger())

	sweeper := remind.NewSweeper(repo, notifier, log.With().Str("component", "remind").Logger())
	stopSweeper, err := sweeper.Run(context.Background(), cfg.ReminderCron)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.ReminderCron).Msg("start reminder sweep")
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := httpserver.NewServer(repo, chatService, uploadService, notifier, cfg.UploadDir, cfg.MaxUploadBytes, log.With().Str("component", "http").Logger())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	stopSweeper()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	dbConn.Close()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
