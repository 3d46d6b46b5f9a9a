// Package sentiment classifies review text into a fixed two-class
// polarity (POSITIVE/NEGATIVE) with a confidence score.
//
// Two classifiers are provided:
//
//   - LexiconClassifier: offline, backed by an embedded polarity lexicon.
//   - RemoteClassifier: HTTP client for a hosted inference endpoint.
//
// Both operate on whole batches. A successful result is index-aligned
// with the input batch; on failure the batch yields an error and callers
// must treat sentiment as unavailable for the entire batch rather than
// aligning a partial result.
package sentiment

import "context"

// Label is one of the two fixed sentiment classes.
type Label string

const (
	Positive Label = "POSITIVE"
	Negative Label = "NEGATIVE"
)

// Result is the classification for a single text.
type Result struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"` // confidence in [0,1]
}

// Classifier scores a batch of texts. Implementations are read-only
// after construction and safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Result, error)
}
