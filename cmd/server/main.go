package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia/internal/app"
	"trivia/internal/config"
	"trivia/internal/questions"
	"trivia/internal/storage"
	httpTransport "trivia/internal/transport/http"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting trivia server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	store, bank, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	loader, themes := buildQuestions(cfg, bank, logger)

	deps := app.Dependencies{
		Questions: loader,
		Themes:    themes,
		Store:     store,
		Cues:      app.LogCueSink{Logger: logger},
	}
	hub := app.NewGameHub(app.SettingsFromConfig(cfg.Game), deps, cfg.Game.StaleSessionTimeout, logger)
	defer hub.Close()

	server := httpTransport.NewServer(cfg, hub, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

type closableStore interface {
	app.Store
	io.Closer
}

// openStore picks the persistence backend. Postgres also serves as the
// stored question bank; its schema comes from cmd/migrate.
func openStore(cfg *config.Config, logger *slog.Logger) (closableStore, *storage.Gorm, error) {
	switch cfg.Storage.Driver {
	case "memory", "":
		return storage.NewMemory(), nil, nil
	case "sqlite":
		s, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite storage opened", "path", cfg.Storage.SQLitePath)
		return s, nil, nil
	case "postgres":
		g, err := storage.OpenPostgres(cfg.Storage.DatabaseURL, storage.PoolConfig{
			MaxOpenConns:    cfg.Storage.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Storage.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("postgres storage opened")
		return g, g, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
}

// buildQuestions chains the stored bank, Gemini and the static bank
func buildQuestions(cfg *config.Config, stored *storage.Gorm, logger *slog.Logger) (*questions.Pipeline, *questions.FallbackThemes) {
	static := questions.NewBank(newRand())

	var sources []questions.Source
	var themeGen questions.ThemeGenerator = static

	if stored != nil {
		sources = append(sources, stored)
	}

	if cfg.Questions.GeminiAPIKey != "" {
		gemini := questions.NewGeminiSource(questions.GeminiConfig{
			APIKey:       cfg.Questions.GeminiAPIKey,
			Model:        cfg.Questions.GeminiModel,
			ImageModel:   cfg.Questions.GeminiImageModel,
			BaseURL:      cfg.Questions.GeminiBaseURL,
			Timeout:      cfg.Questions.Timeout,
			VisualChance: cfg.Questions.VisualChance,
		}, newRand(), logger)
		themeGen = gemini

		var src questions.Source = gemini
		if stored != nil {
			src = questions.NewRecordingSource(gemini, stored, logger)
		}
		sources = append(sources, src)
	} else {
		logger.Warn("GEMINI_API_KEY not set, using the built-in question bank")
	}

	sources = append(sources, static)

	chain := questions.NewChainSource(logger, sources...)
	pipeline := questions.NewPipeline(chain, cfg.Game.SingleFetchRetries, newRand(), logger)
	themes := questions.NewFallbackThemes(themeGen, cfg.Questions.FallbackTheme, logger)
	return pipeline, themes
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
