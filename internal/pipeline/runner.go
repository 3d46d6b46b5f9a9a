// Package pipeline orchestrates one processing run: ingest, normalize,
// classify, extract keywords, theme, aggregate, persist, and render.
//
// An input with zero usable reviews aborts the run. Every later stage
// degrades instead: its failure is logged, counted, and the run carries
// on with whatever annotations it has.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"review_insights/internal/config"
	"review_insights/internal/events"
	"review_insights/internal/ingest"
	"review_insights/internal/insights"
	"review_insights/internal/keywords"
	"review_insights/internal/metrics"
	"review_insights/internal/render"
	"review_insights/internal/report"
	"review_insights/internal/review"
	"review_insights/internal/sentiment"
	"review_insights/internal/store"
	"review_insights/internal/textnorm"
	"review_insights/internal/themes"
)

const (
	reportFile    = "insights_report.txt"
	annotatedFile = "annotated_reviews.csv"
	wordCloudFile = "wordcloud.png"
	chartFile     = "sentiment_distribution.png"
)

// Runner executes pipeline runs against a fixed set of collaborators.
type Runner struct {
	cfg config.Config
	st  *store.Store
	cls sentiment.Classifier
	log zerolog.Logger
	bus *events.Bus
}

func NewRunner(cfg config.Config, st *store.Store, cls sentiment.Classifier, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, st: st, cls: cls, log: log}
}

// SetBus attaches an event bus that receives one event per finished
// run.
func (r *Runner) SetBus(bus *events.Bus) { r.bus = bus }

// RunReport summarizes a finished run for callers and the CLI.
type RunReport struct {
	RunID         string                      `json:"run_id"`
	InputPath     string                      `json:"input_path"`
	ReviewsTotal  int                         `json:"reviews_total"`
	RowsSkipped   int                         `json:"rows_skipped"`
	Keywords      []string                    `json:"keywords"`
	Insights      map[string]insights.Insight `json:"insights"`
	ReportPath    string                      `json:"report_path"`
	AnnotatedPath string                      `json:"annotated_path"`
	WordCloudPath string                      `json:"word_cloud_path"`
	ChartPath     string                      `json:"chart_path"`
	Duration      time.Duration               `json:"duration_ns"`
}

// RunFile processes one review CSV end to end.
func (r *Runner) RunFile(ctx context.Context, inputPath string) (*RunReport, error) {
	runID := uuid.NewString()
	started := time.Now()
	log := r.log.With().Str("run_id", runID).Str("input", inputPath).Logger()

	if err := r.st.RecordRunStarted(ctx, runID, inputPath, config.Now()); err != nil {
		log.Warn().Err(err).Msg("record run failed")
		metrics.StageFailures.WithLabelValues("store").Inc()
	}

	rows, skipped, err := ingest.ReadReviews(inputPath)
	if err != nil {
		errMsg := err.Error()
		if ferr := r.st.FinishRun(ctx, runID, store.RunFailed, 0, skipped, &errMsg, config.Now()); ferr != nil {
			log.Warn().Err(ferr).Msg("finish run failed")
		}
		metrics.ObserveRun(store.RunFailed, time.Since(started))
		r.publish(events.RunEvent{RunID: runID, InputPath: inputPath, Duration: time.Since(started)})
		return nil, fmt.Errorf("ingest %s: %w", inputPath, err)
	}
	for _, row := range rows {
		metrics.ReviewsIngested.WithLabelValues(row.Bank).Inc()
	}
	metrics.RowsSkipped.Add(float64(skipped))
	log.Info().Int("reviews", len(rows)).Int("skipped", skipped).Msg("reviews loaded")

	annotated := r.annotate(ctx, log, rows)

	corpus := make([]string, 0, len(annotated))
	for _, a := range annotated {
		if a.Normalized != "" {
			corpus = append(corpus, a.Normalized)
		}
	}
	kws := keywords.Extract(corpus, r.cfg.Keywords.TopN)
	if len(kws) == 0 {
		log.Warn().Msg("keyword extraction produced no terms")
		metrics.StageFailures.WithLabelValues("keywords").Inc()
	}
	assignThemes(annotated, kws)

	byBank := insights.Aggregate(annotated)

	r.persist(ctx, log, runID, annotated, byBank)
	rep := &RunReport{
		RunID:        runID,
		InputPath:    inputPath,
		ReviewsTotal: len(annotated),
		RowsSkipped:  skipped,
		Keywords:     kws,
		Insights:     byBank,
	}
	r.writeArtifacts(log, rep, annotated, byBank)

	if err := r.st.FinishRun(ctx, runID, store.RunSucceeded, len(annotated), skipped, nil, config.Now()); err != nil {
		log.Warn().Err(err).Msg("finish run failed")
		metrics.StageFailures.WithLabelValues("store").Inc()
	}
	rep.Duration = time.Since(started)
	metrics.ObserveRun(store.RunSucceeded, rep.Duration)
	r.publish(events.RunEvent{
		RunID:        runID,
		InputPath:    inputPath,
		Succeeded:    true,
		ReviewsTotal: len(annotated),
		Banks:        len(byBank),
		Duration:     rep.Duration,
	})
	log.Info().Dur("took", rep.Duration).Int("banks", len(byBank)).Msg("run finished")
	return rep, nil
}

func (r *Runner) publish(ev events.RunEvent) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}

// annotate attaches normalized text and sentiment to each review.
// Classification works on the raw text; a backend failure leaves every
// row unlabeled rather than labeling a prefix.
func (r *Runner) annotate(ctx context.Context, log zerolog.Logger, rows []review.Review) []review.AnnotatedReview {
	annotated := make([]review.AnnotatedReview, len(rows))
	texts := make([]string, len(rows))
	for i, row := range rows {
		annotated[i] = review.AnnotatedReview{
			Review:     row,
			Normalized: textnorm.Normalize(row.Text),
		}
		texts[i] = row.Text
	}

	results, err := r.cls.Classify(ctx, texts)
	if err != nil || len(results) != len(rows) {
		if err == nil {
			err = fmt.Errorf("classifier returned %d results for %d texts", len(results), len(rows))
		}
		log.Warn().Err(err).Msg("sentiment classification failed, continuing unlabeled")
		metrics.StageFailures.WithLabelValues("sentiment").Inc()
		return annotated
	}
	for i, res := range results {
		annotated[i].SentimentLabel = res.Label
		annotated[i].SentimentScore = res.Score
	}
	return annotated
}

// assignThemes themes each review whose normalized text mentions at
// least one extracted keyword. Reviews touching no keyword stay
// unthemed and are excluded from aggregation.
func assignThemes(rows []review.AnnotatedReview, kws []string) {
	for i := range rows {
		if rows[i].Normalized == "" || !mentionsAny(rows[i].Normalized, kws) {
			continue
		}
		rows[i].Theme = themes.Classify(rows[i].Normalized)
	}
}

func mentionsAny(norm string, kws []string) bool {
	padded := " " + norm + " "
	for _, kw := range kws {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

func (r *Runner) persist(ctx context.Context, log zerolog.Logger, runID string, rows []review.AnnotatedReview, byBank map[string]insights.Insight) {
	if err := r.st.InsertAnnotated(ctx, runID, rows); err != nil {
		log.Warn().Err(err).Msg("persist annotated reviews failed")
		metrics.StageFailures.WithLabelValues("store").Inc()
	}
	if err := r.st.SaveInsights(ctx, runID, byBank); err != nil {
		log.Warn().Err(err).Msg("persist insights failed")
		metrics.StageFailures.WithLabelValues("store").Inc()
	}
}

// writeArtifacts renders the report, CSVs, and images. Each artifact
// fails independently.
func (r *Runner) writeArtifacts(log zerolog.Logger, rep *RunReport, rows []review.AnnotatedReview, byBank map[string]insights.Insight) {
	out := r.cfg.OutputDir

	rep.ReportPath = filepath.Join(out, reportFile)
	if err := report.Save(rep.ReportPath, byBank); err != nil {
		log.Warn().Err(err).Msg("write report failed")
		metrics.StageFailures.WithLabelValues("report").Inc()
		rep.ReportPath = ""
	}

	rep.AnnotatedPath = filepath.Join(out, annotatedFile)
	if err := ingest.WriteAnnotated(rep.AnnotatedPath, rows); err != nil {
		log.Warn().Err(err).Msg("write annotated csv failed")
		metrics.StageFailures.WithLabelValues("export").Inc()
		rep.AnnotatedPath = ""
	}
	if err := ingest.WriteByBank(out, rows, r.cfg.WorkerCount); err != nil {
		log.Warn().Err(err).Msg("write per-bank csv failed")
		metrics.StageFailures.WithLabelValues("export").Inc()
	}

	corpus := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Normalized != "" {
			corpus = append(corpus, row.Normalized)
		}
	}
	rep.WordCloudPath = filepath.Join(out, wordCloudFile)
	if err := render.WordCloud(corpus, r.cfg.WordCloud.MaxWords, rep.WordCloudPath); err != nil {
		log.Warn().Err(err).Msg("render word cloud failed")
		metrics.StageFailures.WithLabelValues("render").Inc()
		rep.WordCloudPath = ""
	}

	rep.ChartPath = filepath.Join(out, chartFile)
	if err := render.SentimentChart(sentimentGroups(rows), rep.ChartPath); err != nil {
		log.Warn().Err(err).Msg("render sentiment chart failed")
		metrics.StageFailures.WithLabelValues("render").Inc()
		rep.ChartPath = ""
	}
}

func sentimentGroups(rows []review.AnnotatedReview) []render.GroupCount {
	byBank := make(map[string]*render.GroupCount)
	var order []string
	for _, row := range rows {
		g, ok := byBank[row.Bank]
		if !ok {
			g = &render.GroupCount{Bank: row.Bank}
			byBank[row.Bank] = g
			order = append(order, row.Bank)
		}
		switch row.SentimentLabel {
		case sentiment.Positive:
			g.Positive++
		case sentiment.Negative:
			g.Negative++
		}
	}
	groups := make([]render.GroupCount, 0, len(order))
	for _, bank := range order {
		groups = append(groups, *byBank[bank])
	}
	return groups
}
