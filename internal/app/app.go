// Package app wires the service components together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"review_insights/internal/config"
	"review_insights/internal/events"
	"review_insights/internal/httpapi"
	"review_insights/internal/metrics"
	"review_insights/internal/notify"
	"review_insights/internal/obs"
	"review_insights/internal/pipeline"
	"review_insights/internal/queue"
	"review_insights/internal/sentiment"
	"review_insights/internal/store"
	"review_insights/internal/watch"
)

// App holds the wired components of the review insight service.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	store   *store.Store
	runner  *pipeline.Runner
	queue   *queue.Queue
	watcher *watch.Watcher
	bus     *events.Bus
	webhook *notify.Webhook
	mux     *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	log := obs.NewLogger(cfg.Environment)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	runner := pipeline.NewRunner(cfg, st, buildClassifier(cfg), log)
	runner.SetBus(bus)

	q := queue.New(cfg.QueueSize, cfg.WorkerCount, time.Duration(cfg.RunTimeoutSec)*time.Second, log)
	watcher := watch.New(cfg, runner, q, log)
	webhook := notify.NewWebhook(cfg.WebhookURL, log)

	reg := metrics.InitRegistry()
	mux := http.NewServeMux()
	router := httpapi.NewRouter(cfg, st, runner, q, reg, log)
	router.Register(mux)

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		runner:  runner,
		queue:   q,
		watcher: watcher,
		bus:     bus,
		webhook: webhook,
		mux:     mux,
	}, nil
}

func buildClassifier(cfg config.Config) sentiment.Classifier {
	if cfg.Sentiment.Backend == config.BackendRemote && cfg.Sentiment.Endpoint != "" {
		return sentiment.NewRemoteClassifier(cfg.Sentiment.Endpoint, cfg.Sentiment.Token, cfg.Sentiment.RPS)
	}
	return sentiment.NewLexiconClassifier()
}

// Run starts the worker pool, watcher, and HTTP server and blocks
// until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.queue.Start(ctx)
	a.webhook.Watch(ctx, a.bus)
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{Addr: a.cfg.HTTPPort, Handler: a.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.queue.Stop(drainCtx)
	}()
	a.log.Info().Str("addr", a.cfg.HTTPPort).Msg("http listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunOnce processes a single input file synchronously.
func (a *App) RunOnce(ctx context.Context, inputPath string) (*pipeline.RunReport, error) {
	return a.runner.RunFile(ctx, inputPath)
}

// Backfill processes inbox files that arrived before startup.
func (a *App) Backfill(ctx context.Context) error {
	return a.watcher.Backfill(ctx)
}

func (a *App) Close() error { return a.store.Close() }

func (a *App) Runner() *pipeline.Runner { return a.runner }
func (a *App) Store() *store.Store      { return a.store }
func (a *App) Mux() *http.ServeMux      { return a.mux }
