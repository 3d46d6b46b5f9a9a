// Package insights aggregates annotated reviews into per-bank drivers
// and pain points.
//
// Aggregation is pure: group by bank, partition by sentiment label,
// tally themes, take the two most frequent per partition. Tallies are
// commutative; only frequency ties are input-order sensitive, broken by
// first-encountered order.
package insights

import (
	"review_insights/internal/review"
	"review_insights/internal/sentiment"
	"review_insights/internal/themes"
)

// topThemes is the number of themes reported per sentiment partition.
const topThemes = 2

// Insight summarizes one bank: the leading themes among its positive
// reviews (drivers) and among its negative reviews (pain points).
// Either list may be empty when the respective partition is.
type Insight struct {
	Drivers    []themes.Theme `json:"drivers"`
	PainPoints []themes.Theme `json:"pain_points"`
}

// Aggregate computes per-bank insights. Unthemed reviews and reviews
// without a sentiment label are excluded from the tallies. Input
// records are never mutated.
func Aggregate(reviews []review.AnnotatedReview) map[string]Insight {
	positive := make(map[string]*tally)
	negative := make(map[string]*tally)
	bankOrder := make([]string, 0)
	seenBank := make(map[string]struct{})

	for _, r := range reviews {
		if _, ok := seenBank[r.Bank]; !ok {
			seenBank[r.Bank] = struct{}{}
			bankOrder = append(bankOrder, r.Bank)
			positive[r.Bank] = newTally()
			negative[r.Bank] = newTally()
		}
		if r.Theme == "" {
			continue
		}
		switch r.SentimentLabel {
		case sentiment.Positive:
			positive[r.Bank].add(r.Theme)
		case sentiment.Negative:
			negative[r.Bank].add(r.Theme)
		}
	}

	out := make(map[string]Insight, len(bankOrder))
	for _, bank := range bankOrder {
		out[bank] = Insight{
			Drivers:    positive[bank].top(topThemes),
			PainPoints: negative[bank].top(topThemes),
		}
	}
	return out
}

// tally counts themes while remembering first-encounter order, which is
// the tie-break for equal frequencies.
type tally struct {
	counts map[themes.Theme]int
	order  []themes.Theme
}

func newTally() *tally {
	return &tally{counts: make(map[themes.Theme]int)}
}

func (t *tally) add(th themes.Theme) {
	if _, ok := t.counts[th]; !ok {
		t.order = append(t.order, th)
	}
	t.counts[th]++
}

// top returns up to n themes by descending count; ties keep
// first-encountered order. Always returns a non-nil slice.
func (t *tally) top(n int) []themes.Theme {
	ranked := append([]themes.Theme(nil), t.order...)
	// Stable selection sort keeps insertion order among equal counts.
	for i := 0; i < len(ranked); i++ {
		best := i
		for j := i + 1; j < len(ranked); j++ {
			if t.counts[ranked[j]] > t.counts[ranked[best]] {
				best = j
			}
		}
		if best != i {
			picked := ranked[best]
			copy(ranked[i+1:best+1], ranked[i:best])
			ranked[i] = picked
		}
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []themes.Theme{}
	}
	return ranked
}
