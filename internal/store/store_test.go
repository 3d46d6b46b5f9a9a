package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"review_insights/internal/insights"
	"review_insights/internal/review"
	"review_insights/internal/sentiment"
	"review_insights/internal/themes"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.RecordRunStarted(ctx, "run-1", "/in/reviews.csv", started); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := s.FinishRun(ctx, "run-1", RunSucceeded, 40, 2, nil, started.Add(time.Minute)); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	run, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run == nil {
		t.Fatal("expected a run")
	}
	if run.RunID != "run-1" || run.Status != RunSucceeded {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.ReviewsTotal != 40 || run.ReviewsSkipped != 2 {
		t.Errorf("unexpected counts: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}
}

func TestLatestRunEmpty(t *testing.T) {
	s := openTestStore(t)
	run, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}

func TestLatestRunPicksNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.RecordRunStarted(ctx, "run-old", "a.csv", base); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRunStarted(ctx, "run-new", "b.csv", base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	run, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if run.RunID != "run-new" {
		t.Errorf("expected run-new, got %s", run.RunID)
	}
}

func TestAnnotatedRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []review.AnnotatedReview{
		{
			Review: review.Review{
				Text: "login failed", Rating: 1,
				Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				Bank: "Dashen Bank", Source: "Google Play Store",
			},
			Normalized:     "login fail",
			SentimentLabel: sentiment.Negative,
			SentimentScore: 0.93,
			Theme:          themes.AccountAccess,
		},
		{
			Review: review.Review{
				Text: "fast transfer", Rating: 5,
				Bank: "Bank of Abyssinia", Source: "Google Play Store",
			},
			Normalized:     "fast transfer",
			SentimentLabel: sentiment.Positive,
			SentimentScore: 0.88,
			Theme:          themes.Transactions,
		},
	}
	if err := s.InsertAnnotated(ctx, "run-1", rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListAnnotated(ctx, "run-1", "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Bank != "Dashen Bank" || got[0].SentimentLabel != sentiment.Negative || got[0].Theme != themes.AccountAccess {
		t.Errorf("unexpected first row: %+v", got[0])
	}

	only, err := s.ListAnnotated(ctx, "run-1", "Bank of Abyssinia", 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(only) != 1 || only[0].Text != "fast transfer" {
		t.Errorf("unexpected filter result: %+v", only)
	}
}

func TestInsightsRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := map[string]insights.Insight{
		"Dashen Bank": {
			Drivers:    []themes.Theme{themes.Transactions, themes.UserInterface},
			PainPoints: []themes.Theme{themes.AccountAccess},
		},
		"Bank of Abyssinia": {
			Drivers:    []themes.Theme{},
			PainPoints: []themes.Theme{themes.CustomerSupport, themes.Transactions},
		},
	}
	if err := s.SaveInsights(ctx, "run-1", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.InsightsForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 banks, got %d", len(got))
	}
	dashen := got["Dashen Bank"]
	if len(dashen.Drivers) != 2 || dashen.Drivers[0] != themes.Transactions || dashen.Drivers[1] != themes.UserInterface {
		t.Errorf("driver order lost: %+v", dashen.Drivers)
	}
	boa := got["Bank of Abyssinia"]
	if len(boa.Drivers) != 0 || boa.Drivers == nil {
		t.Errorf("expected empty non-nil drivers, got %+v", boa.Drivers)
	}
	if len(boa.PainPoints) != 2 || boa.PainPoints[0] != themes.CustomerSupport {
		t.Errorf("pain point order lost: %+v", boa.PainPoints)
	}
}

func TestHealth(t *testing.T) {
	s := openTestStore(t)
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}
