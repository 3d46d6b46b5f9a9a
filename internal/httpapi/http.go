// Package httpapi builds HTTP handlers for /api, /ops, and /metrics.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"review_insights/internal/config"
	"review_insights/internal/metrics"
	"review_insights/internal/pipeline"
	"review_insights/internal/queue"
	"review_insights/internal/store"
)

// Router builds HTTP handlers for the review insight service.
type Router struct {
	cfg    config.Config
	store  *store.Store
	runner *pipeline.Runner
	q      *queue.Queue
	reg    *prometheus.Registry
	log    zerolog.Logger
}

// NewRouter wires handlers against the store and runner. q may be nil
// when the service runs without a worker pool.
func NewRouter(cfg config.Config, st *store.Store, runner *pipeline.Runner, q *queue.Queue, reg *prometheus.Registry, log zerolog.Logger) *Router {
	return &Router{cfg: cfg, store: st, runner: runner, q: q, reg: reg, log: log}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ops/health", r.instrument("/ops/health", r.health))
	mux.HandleFunc("/ops/status", r.instrument("/ops/status", r.status))
	mux.HandleFunc("/ops/runs", r.instrument("/ops/runs", r.runs))
	mux.HandleFunc("/ops/run", r.instrument("/ops/run", r.triggerRun))
	mux.HandleFunc("/ops/insights", r.instrument("/ops/insights", r.insights))
	mux.HandleFunc("/api/reviews", r.instrument("/api/reviews", r.reviews))
	if r.reg != nil {
		mux.Handle("/metrics", metrics.Handler(r.reg))
	}
}

func (r *Router) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, req)
		metrics.ObserveHTTP(route, req.Method, rec.status, time.Since(started))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	run, err := r.store.LatestRun(req.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	payload := map[string]any{
		"latest_run": run,
		"workers":    r.cfg.WorkerCount,
		"watcher":    r.cfg.EnableWatcher,
	}
	if r.q != nil {
		payload["queue"] = r.q.Stats()
	}
	r.respondJSON(w, payload)
}

func (r *Router) runs(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.store.ListRuns(req.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.Run{}
	}
	r.respondJSON(w, list)
}

// triggerRun starts a synchronous pipeline run over a server-side path.
func (r *Router) triggerRun(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	rep, err := r.runner.RunFile(req.Context(), body.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	r.respondJSON(w, rep)
}

// insights serves the per-bank drivers and pain points of a run,
// defaulting to the most recent one.
func (r *Router) insights(w http.ResponseWriter, req *http.Request) {
	runID := req.URL.Query().Get("run_id")
	if runID == "" {
		run, err := r.store.LatestRun(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "no runs yet", http.StatusNotFound)
			return
		}
		runID = run.RunID
	}
	byBank, err := r.store.InsightsForRun(req.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.respondJSON(w, map[string]any{"run_id": runID, "insights": byBank})
}

func (r *Router) reviews(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	runID := q.Get("run_id")
	if runID == "" {
		run, err := r.store.LatestRun(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "no runs yet", http.StatusNotFound)
			return
		}
		runID = run.RunID
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	rows, err := r.store.ListAnnotated(req.Context(), runID, q.Get("bank"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.respondJSON(w, rows)
}

func (r *Router) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.log.Error().Err(err).Msg("write json")
	}
}
