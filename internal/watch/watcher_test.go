package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"review_insights/internal/config"
	"review_insights/internal/pipeline"
	"review_insights/internal/sentiment"
	"review_insights/internal/store"
)

func TestBackfillProcessesExistingCSVs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		InboxDir:    filepath.Join(dir, "inbox"),
		OutputDir:   filepath.Join(dir, "output"),
		DBPath:      filepath.Join(dir, "insights.db"),
		WorkerCount: 2,
		Keywords:    config.KeywordConfig{TopN: 20},
		WordCloud:   config.WordCloudConfig{MaxWords: 200},
	}
	if err := os.MkdirAll(cfg.InboxDir, 0o755); err != nil {
		t.Fatal(err)
	}
	csvData := "review,rating,date,bank,source\nfast transfer great app,5,2024-06-01,Bank X,store\nlogin failed,1,2024-06-02,Bank X,store\n"
	if err := os.WriteFile(filepath.Join(cfg.InboxDir, "reviews.csv"), []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-CSV files are ignored.
	if err := os.WriteFile(filepath.Join(cfg.InboxDir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	runner := pipeline.NewRunner(cfg, st, sentiment.NewLexiconClassifier(), zerolog.Nop())
	w := New(cfg, runner, nil, zerolog.Nop())
	if err := w.Backfill(context.Background()); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	run, err := st.LatestRun(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.Status != store.RunSucceeded {
		t.Fatalf("expected a successful run, got %+v", run)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "insights_report.txt")); err != nil {
		t.Errorf("missing report: %v", err)
	}
}

func TestIsReviewFile(t *testing.T) {
	if !isReviewFile("/inbox/reviews.CSV") {
		t.Error("csv extension should match case-insensitively")
	}
	if isReviewFile("/inbox/reviews.json") {
		t.Error("non-csv should not match")
	}
}
