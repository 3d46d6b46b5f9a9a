// Package ingest reads raw review tables and writes annotated ones.
// The CSV shape matches the acquisition collaborator's output: one row
// per review with columns review, rating, date, bank, source.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"review_insights/internal/review"
)

// ErrNoReviews signals an input file with no usable rows.
var ErrNoReviews = errors.New("no reviews in input")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadReviews loads a raw review CSV. Rows that fail to decode are
// skipped, not fatal; the skip count is returned so the caller can log
// it. The error is non-nil only when the file itself is unreadable or
// yields zero usable rows.
func ReadReviews(path string) ([]review.Review, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open reviews: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	col := indexColumns(header)
	for _, required := range []string{"review", "bank"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []review.Review
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rev, ok := decodeRow(record, col)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, rev)
	}
	if len(rows) == 0 {
		return nil, skipped, ErrNoReviews
	}
	return rows, skipped, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func decodeRow(record []string, col map[string]int) (review.Review, bool) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rev := review.Review{
		Text:   field("review"),
		Bank:   field("bank"),
		Source: field("source"),
	}
	if rev.Bank == "" {
		return review.Review{}, false
	}
	if raw := field("rating"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return review.Review{}, false
		}
		rev.Rating = n
	}
	if raw := field("date"); raw != "" {
		ts, ok := parseDate(raw)
		if !ok {
			return review.Review{}, false
		}
		rev.Date = ts
	}
	return rev, true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

var annotatedHeader = []string{
	"review", "rating", "date", "bank", "source",
	"normalized_text", "sentiment_label", "sentiment_score", "theme",
}

// WriteAnnotated saves annotated rows as CSV, creating the parent
// directory when needed.
func WriteAnnotated(path string, rows []review.AnnotatedReview) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(annotatedHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Text,
			strconv.Itoa(r.Rating),
			formatDate(r.Date),
			r.Bank,
			r.Source,
			r.Normalized,
			string(r.SentimentLabel),
			strconv.FormatFloat(r.SentimentScore, 'f', 4, 64),
			string(r.Theme),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

// WriteByBank writes one annotated CSV per bank alongside nothing else.
// Banks are written concurrently; one bank's failure never blocks the
// others, and the first error is reported after all writes finish.
func WriteByBank(dir string, rows []review.AnnotatedReview, workers int) error {
	if workers <= 0 {
		workers = 4
	}
	byBank := make(map[string][]review.AnnotatedReview)
	for _, r := range rows {
		byBank[r.Bank] = append(byBank[r.Bank], r)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for bank, bankRows := range byBank {
		path := filepath.Join(dir, BankFileName(bank))
		bankRows := bankRows
		g.Go(func() error {
			if err := WriteAnnotated(path, bankRows); err != nil {
				return fmt.Errorf("save %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// BankFileName turns "Bank of Abyssinia" into "bank_of_abyssinia_reviews.csv".
func BankFileName(bank string) string {
	return strings.ReplaceAll(strings.ToLower(bank), " ", "_") + "_reviews.csv"
}
