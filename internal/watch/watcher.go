// Package watch monitors the inbox directory for new review CSVs and
// feeds them to the pipeline.
package watch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"review_insights/internal/config"
	"review_insights/internal/pipeline"
	"review_insights/internal/queue"
)

type Watcher struct {
	cfg    config.Config
	runner *pipeline.Runner
	q      *queue.Queue
	log    zerolog.Logger
}

// New builds a watcher. q may be nil, in which case inbox files are
// processed inline on the watcher goroutine.
func New(cfg config.Config, runner *pipeline.Runner, q *queue.Queue, log zerolog.Logger) *Watcher {
	return &Watcher{cfg: cfg, runner: runner, q: q, log: log}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		w.log.Info().Msg("watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isReviewFile(evt.Name) {
					w.dispatch(ctx, evt.Name)
				}
			case err := <-watcher.Errors:
				w.log.Error().Err(err).Msg("watcher error")
			}
		}
	}()
	return watcher.Add(w.cfg.InboxDir)
}

// dispatch hands a file to the worker pool, or processes it inline when
// no queue is attached.
func (w *Watcher) dispatch(ctx context.Context, path string) {
	if w.q == nil {
		w.process(ctx, path)
		return
	}
	w.q.Enqueue(queue.Job{
		ID:     filepath.Base(path),
		Source: "watcher",
		Work: func(jobCtx context.Context) error {
			_, err := w.runner.RunFile(jobCtx, path)
			return err
		},
	})
}

func (w *Watcher) process(ctx context.Context, path string) {
	rep, err := w.runner.RunFile(ctx, path)
	if err != nil {
		w.log.Error().Err(err).Str("input", path).Msg("run failed")
		return
	}
	w.log.Info().Str("run_id", rep.RunID).Str("input", path).Msg("run complete")
}

func isReviewFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".csv"
}

// Backfill runs the pipeline over CSVs already sitting in the inbox.
// It processes them synchronously so callers can sequence startup.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.InboxDir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isReviewFile(e) {
			w.process(ctx, e)
		}
	}
	return nil
}
