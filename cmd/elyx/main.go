package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/elyx/internal/api"
	"github.com/MikeSquared-Agency/elyx/internal/config"
	"github.com/MikeSquared-Agency/elyx/internal/hermes"
	"github.com/MikeSquared-Agency/elyx/internal/ollama"
	"github.com/MikeSquared-Agency/elyx/internal/openai"
	"github.com/MikeSquared-Agency/elyx/internal/pipeline"
	"github.com/MikeSquared-Agency/elyx/internal/runlock"
	"github.com/MikeSquared-Agency/elyx/internal/scenario"
	"github.com/MikeSquared-Agency/elyx/internal/seed"
	"github.com/MikeSquared-Agency/elyx/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("elyx starting", "port", cfg.Port, "backend", cfg.GenerationBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready")

	if cfg.SeedOnStart {
		if _, err := seed.Ensure(ctx, db, slog.Default()); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Generation backend
	var gen pipeline.Generator
	switch cfg.GenerationBackend {
	case "openai":
		c := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.GenerationTimeout, slog.Default())
		slog.Info("openai-compatible client ready", "base_url", cfg.OpenAIBaseURL, "model", c.Model())
		gen = c
	default:
		c := ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.GenerationTimeout, slog.Default())
		slog.Info("ollama client ready", "base_url", cfg.OllamaBaseURL, "model", c.Model())
		gen = c
	}

	// NATS/Hermes (optional, progress events only)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, generation events will not be published")
	}

	var runner *pipeline.Runner
	if hermesClient != nil {
		runner = pipeline.New(db, gen, hermesClient, slog.Default())
	} else {
		runner = pipeline.New(db, gen, nil, slog.Default())
	}

	plan := scenario.DefaultPlan()
	if cfg.IncludeBreakthrough {
		plan = scenario.PlanWithBreakthrough()
		runner.SetPlan(plan)
	}

	// Redis run lock (optional, shared across replicas)
	if cfg.RedisURL != "" {
		rdb, err := runlock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		ttl := cfg.GenerationTimeout*time.Duration(len(plan)) + time.Minute
		runner.SetLocker(runlock.NewRedis(rdb, runlock.DefaultKey, ttl, slog.Default()))
		slog.Info("redis run lock ready", "ttl", ttl)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, db, runner, cfg.CORSAllowedOrigins, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectServiceStarted, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"backend":   cfg.GenerationBackend,
			"scenarios": len(plan),
		}); err != nil {
			slog.Warn("failed to publish startup event", "error", err)
		}
	}

	slog.Info("elyx ready", "port", cfg.Port, "scenarios", len(plan))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("elyx stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
