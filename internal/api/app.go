package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gil-sasi/code-mentor/internal/auth"
	"github.com/gil-sasi/code-mentor/internal/challenge"
	"github.com/gil-sasi/code-mentor/internal/config"
	"github.com/gil-sasi/code-mentor/internal/llm"
	"github.com/gil-sasi/code-mentor/internal/progress"
	"github.com/gil-sasi/code-mentor/internal/queue"
	"github.com/gil-sasi/code-mentor/internal/review"
	"github.com/gil-sasi/code-mentor/internal/storage/sqlite"
	"github.com/gil-sasi/code-mentor/internal/submission"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	DB          *sqlite.DB
	Stores      *sqlite.Stores
	Auth        *auth.Service
	Challenges  *challenge.Service
	Submissions *submission.Service
	Reviews     *review.Service
	Progress    *progress.Service
	Dispatcher  queue.Dispatcher
	Queue       *queue.Connection // nil when the in-process dispatcher runs
	Logger      *slog.Logger

	closers []func()
}

// NewApp creates a new application instance with all dependencies wired.
// The database must already be open and migrated.
func NewApp(cfg *config.Config, db *sqlite.DB, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Stores: sqlite.NewStores(db),
		Logger: logger,
	}

	sessionTTL := time.Duration(cfg.SessionMaxAge) * time.Second
	app.Auth = auth.NewService(app.Stores, sessionTTL, logger)

	challengeProvider, err := buildProvider(cfg.ChallengeProvider, cfg.ChallengeAPIKey, cfg.ChallengeModel, app)
	if err != nil {
		return nil, fmt.Errorf("challenge provider: %w", err)
	}
	reviewProvider, err := buildProvider(cfg.ReviewProvider, cfg.ReviewAPIKey, cfg.ReviewModel, app)
	if err != nil {
		return nil, fmt.Errorf("review provider: %w", err)
	}

	app.Challenges = challenge.NewService(app.Stores, challengeProvider, logger)
	app.Submissions = submission.NewService(app.Stores, logger)
	app.Reviews = review.NewService(app.Stores, reviewProvider, logger)
	app.Progress = progress.NewService(app.Stores, logger)

	if err := app.initDispatcher(); err != nil {
		return nil, err
	}

	return app, nil
}

// buildProvider creates a resilience-wrapped LLM provider, or nil when no
// credential is configured so the deterministic fallback runs instead.
func buildProvider(name, apiKey, model string, app *App) (llm.Provider, error) {
	if apiKey == "" {
		slog.Info("no API key configured, using deterministic fallback", "provider", name)
		return nil, nil
	}

	var base llm.Provider
	switch name {
	case "claude", "":
		base = llm.NewClaudeProvider(llm.ClaudeConfig{APIKey: apiKey, Model: model})
	case "openai":
		base = llm.NewOpenAIProvider(llm.OpenAIConfig{APIKey: apiKey, Model: model})
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}

	resilient := llm.NewResilientProvider(base, llm.DefaultResilientConfig())
	app.closers = append(app.closers, func() { resilient.Close() })
	return resilient, nil
}

// initDispatcher selects the queue backend. A configured RabbitMQ URL gets a
// broker-backed producer and consumer; otherwise review jobs run on an
// in-process worker pool.
func (a *App) initDispatcher() error {
	reviewJob := func(ctx context.Context, job *queue.ReviewJob) error {
		_, err := a.Reviews.Generate(ctx, job.SubmissionID)
		return err
	}

	if a.Config.QueueURL == "" {
		cfg := queue.DefaultInProcessConfig()
		cfg.Workers = a.Config.QueueWorkers
		dispatcher := queue.NewInProcessDispatcher(reviewJob, cfg, a.Logger)
		a.Dispatcher = dispatcher
		a.closers = append(a.closers, dispatcher.Close)
		return nil
	}

	conn, err := queue.NewConnection(a.Config.QueueURL)
	if err != nil {
		return fmt.Errorf("connect queue: %w", err)
	}
	a.Queue = conn
	a.closers = append(a.closers, func() { conn.Close() })

	consumer := queue.NewConsumer(conn, reviewJob, queue.ConsumerConfig{
		Workers: a.Config.QueueWorkers,
	})
	if err := consumer.Start(context.Background()); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	a.closers = append(a.closers, consumer.Stop)

	a.Dispatcher = queue.NewProducer(conn)
	return nil
}

// Close cleans up application resources in reverse construction order.
func (a *App) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
