// Package review holds the domain records flowing through the pipeline.
package review

import (
	"time"

	"review_insights/internal/sentiment"
	"review_insights/internal/themes"
)

// Review is one raw customer review as handed over by the acquisition
// boundary. Immutable once inside the pipeline; derived fields live on
// AnnotatedReview.
type Review struct {
	Text   string    `json:"review"`
	Rating int       `json:"rating"`
	Date   time.Time `json:"date"`
	Bank   string    `json:"bank"`
	Source string    `json:"source"`
}

// AnnotatedReview is a Review joined with everything the pipeline
// derived for it. SentimentLabel is empty when sentiment was
// unavailable for the batch; Theme is empty when the review matched no
// extracted keyword (unthemed, never silently defaulted).
type AnnotatedReview struct {
	Review
	Normalized     string          `json:"normalized_text"`
	SentimentLabel sentiment.Label `json:"sentiment_label"`
	SentimentScore float64         `json:"sentiment_score"`
	Theme          themes.Theme    `json:"theme"`
}
