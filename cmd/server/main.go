package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/api"
	"github.com/nadmax/planwise/internal/config"
	"github.com/nadmax/planwise/internal/logging"
	"github.com/nadmax/planwise/internal/middleware"
	"github.com/nadmax/planwise/internal/priority"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/recipe"
	"github.com/nadmax/planwise/internal/repository"
	"github.com/nadmax/planwise/internal/store"
	"github.com/nadmax/planwise/internal/trip"
)

func main() {
	configPath := flag.String("config", "", "path to planwise.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.NewStore(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	q, err := queue.NewQueue(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := q.Close(); err != nil {
			logger.Warn("failed to close server queue", zap.Error(err))
		}
	}()

	var runs repository.RunRepository
	if cfg.PostgresDSN != "" {
		repo, err := repository.NewPostgresRunRepository(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close Postgres repository", zap.Error(err))
			}
		}()
		runs = repo
	} else {
		logger.Info("POSTGRES_DSN not set, prioritization history disabled")
	}

	gemini, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		return err
	}

	prioritizer := priority.New(gemini, logger.Named("priority"))
	if runs != nil {
		prioritizer.SetHistory(runs)
	}

	apiHandler := api.NewAPI(api.Deps{
		Store:       s,
		Queue:       q,
		Runs:        runs,
		Prioritizer: prioritizer,
		Recipes:     recipe.NewGenerator(gemini, logger.Named("recipe")),
		Trips:       trip.NewPlanner(gemini, logger.Named("trip")),
		Logger:      logger.Named("api"),
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", middleware.MetricsMiddleware(apiHandler))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger.Named("http"))(c.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go startMetricsCollector(ctx, s, q, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("redis", cfg.RedisAddr),
			zap.String("model", gemini.Model()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
