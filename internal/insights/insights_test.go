package insights

import (
	"reflect"
	"testing"

	"review_insights/internal/review"
	"review_insights/internal/sentiment"
	"review_insights/internal/themes"
)

func annotated(bank string, label sentiment.Label, theme themes.Theme) review.AnnotatedReview {
	return review.AnnotatedReview{
		Review:         review.Review{Bank: bank, Text: "x"},
		SentimentLabel: label,
		Theme:          theme,
	}
}

func TestAggregateScenario(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("X", sentiment.Negative, themes.AccountAccess),
		annotated("X", sentiment.Negative, themes.AccountAccess),
		annotated("X", sentiment.Positive, themes.Transactions),
	}
	got := Aggregate(rows)
	insight, ok := got["X"]
	if !ok {
		t.Fatal("missing insight for bank X")
	}
	if !reflect.DeepEqual(insight.Drivers, []themes.Theme{themes.Transactions}) {
		t.Errorf("drivers = %v, want [Transaction Performance]", insight.Drivers)
	}
	if !reflect.DeepEqual(insight.PainPoints, []themes.Theme{themes.AccountAccess}) {
		t.Errorf("pain points = %v, want [Account Access Issues]", insight.PainPoints)
	}
}

func TestAggregateTopTwoBound(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("A", sentiment.Positive, themes.Transactions),
		annotated("A", sentiment.Positive, themes.Transactions),
		annotated("A", sentiment.Positive, themes.UserInterface),
		annotated("A", sentiment.Positive, themes.CustomerSupport),
		annotated("A", sentiment.Positive, themes.FeatureRequests),
	}
	got := Aggregate(rows)["A"]
	if len(got.Drivers) > 2 {
		t.Errorf("drivers exceed bound: %v", got.Drivers)
	}
	if got.Drivers[0] != themes.Transactions {
		t.Errorf("most frequent theme should lead: %v", got.Drivers)
	}
	if len(got.PainPoints) != 0 {
		t.Errorf("no negative reviews, pain points should be empty, got %v", got.PainPoints)
	}
}

func TestAggregateEmptyPartitions(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("B", sentiment.Negative, themes.CustomerSupport),
	}
	got := Aggregate(rows)["B"]
	if got.Drivers == nil || len(got.Drivers) != 0 {
		t.Errorf("expected empty non-nil drivers, got %#v", got.Drivers)
	}
	if len(got.PainPoints) != 1 || got.PainPoints[0] != themes.CustomerSupport {
		t.Errorf("pain points = %v", got.PainPoints)
	}
}

func TestAggregateTieBreakFirstEncountered(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("C", sentiment.Positive, themes.UserInterface),
		annotated("C", sentiment.Positive, themes.Transactions),
		annotated("C", sentiment.Positive, themes.AccountAccess),
		annotated("C", sentiment.Positive, themes.Transactions),
		annotated("C", sentiment.Positive, themes.UserInterface),
		annotated("C", sentiment.Positive, themes.AccountAccess),
	}
	got := Aggregate(rows)["C"]
	want := []themes.Theme{themes.UserInterface, themes.Transactions}
	if !reflect.DeepEqual(got.Drivers, want) {
		t.Errorf("tie-break order: got %v, want %v", got.Drivers, want)
	}
}

func TestAggregateSkipsUnthemedAndUnlabeled(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("D", sentiment.Positive, ""),
		annotated("D", "", themes.Transactions),
		annotated("D", sentiment.Positive, themes.UserInterface),
	}
	got := Aggregate(rows)["D"]
	want := []themes.Theme{themes.UserInterface}
	if !reflect.DeepEqual(got.Drivers, want) {
		t.Errorf("drivers = %v, want %v", got.Drivers, want)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("E", sentiment.Positive, themes.Transactions),
		annotated("E", sentiment.Negative, themes.AccountAccess),
		annotated("F", sentiment.Positive, themes.UserInterface),
	}
	a := Aggregate(rows)
	b := Aggregate(rows)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("aggregation not deterministic: %v vs %v", a, b)
	}
}

func TestAggregateGroupsByBank(t *testing.T) {
	rows := []review.AnnotatedReview{
		annotated("G", sentiment.Positive, themes.Transactions),
		annotated("H", sentiment.Negative, themes.CustomerSupport),
	}
	got := Aggregate(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 banks, got %d", len(got))
	}
	if len(got["G"].Drivers) != 1 || len(got["G"].PainPoints) != 0 {
		t.Errorf("bank G insight wrong: %+v", got["G"])
	}
	if len(got["H"].PainPoints) != 1 || len(got["H"].Drivers) != 0 {
		t.Errorf("bank H insight wrong: %+v", got["H"])
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("expected no insights for empty input, got %v", got)
	}
}
