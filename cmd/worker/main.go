package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/config"
	"github.com/nadmax/planwise/internal/logging"
	"github.com/nadmax/planwise/internal/priority"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/repository"
	"github.com/nadmax/planwise/internal/store"
	"github.com/nadmax/planwise/internal/worker"
	"github.com/nadmax/planwise/internal/worker/handlers"
)

var errEmailDisabled = errors.New("email delivery is not configured (set EMAIL_API_KEY and FROM_ADDRESS)")

// disabledMailer fails every send so mail jobs end up failed instead of lost.
type disabledMailer struct{}

func (disabledMailer) Send(context.Context, string, string, string) error {
	return errEmailDisabled
}

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
		logger.Error("worker exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, err := queue.NewQueue(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := q.Close(); err != nil {
			logger.Warn("failed to close worker queue", zap.Error(err))
		}
	}()

	s, err := store.NewStore(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
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
	}

	var completer ai.Completer
	if cfg.GoogleAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey:  cfg.GoogleAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return err
		}
		completer = gemini
	} else {
		logger.Warn("GOOGLE_API_KEY not set, reprioritize jobs will use rule-based scores")
	}

	prioritizer := priority.New(completer, logger.Named("priority"))
	if runs != nil {
		prioritizer.SetHistory(runs)
	}

	var mailer handlers.Mailer = disabledMailer{}
	if cfg.EmailEnabled() {
		mailer = handlers.NewSendGridMailer(cfg.EmailAPIKey, cfg.FromName, cfg.FromAddress, logger.Named("mail"))
	} else {
		logger.Warn("email delivery disabled")
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%d", time.Now().Unix())
	}

	var wg sync.WaitGroup
	for i := range cfg.Workers {
		id := workerID
		if cfg.Workers > 1 {
			id = fmt.Sprintf("%s-%d", workerID, i+1)
		}

		w := worker.NewWorker(id, q, logger)
		w.SetPollInterval(cfg.PollInterval)
		w.RegisterHandler(handlers.SendEmailJob, handlers.SendEmailHandler(mailer))
		w.RegisterHandler(handlers.ShareRecipeJob, handlers.ShareRecipeHandler(s, mailer))
		w.RegisterHandler(handlers.PriorityDigestJob, handlers.PriorityDigestHandler(s, mailer))
		w.RegisterHandler(handlers.ReprioritizeJob, handlers.ReprioritizeHandler(s, prioritizer, logger.Named("reprioritize")))
		if runs != nil {
			w.RegisterHandler(handlers.RunReportJob, handlers.NewReportGenerator(runs, logger.Named("report")).RunReportHandler)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down workers")
	wg.Wait()

	return nil
}
