package sentiment

import (
	"context"
	_ "embed"
	"strconv"
	"strings"
	"unicode"
)

//go:embed lexicon.txt
var lexiconRaw string

// maxInputBytes caps a single text; oversized texts score as neutral-positive.
const maxInputBytes = 1 << 20

// LexiconClassifier scores text against an embedded polarity lexicon.
// It is the offline stand-in for a hosted binary sentiment model: always
// available, deterministic, and binary (no neutral class). Read-only
// after construction and safe for concurrent use.
type LexiconClassifier struct {
	lexicon map[string]float64
	negated map[string]struct{}
}

// NewLexiconClassifier parses the embedded lexicon once.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		lexicon: parseLexicon(lexiconRaw),
		negated: map[string]struct{}{
			"not": {}, "no": {}, "never": {}, "nor": {}, "hardly": {}, "without": {}, "cannot": {},
		},
	}
}

// parseLexicon parses "word score" lines, one entry per line.
func parseLexicon(raw string) map[string]float64 {
	m := make(map[string]float64, 256)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		sp := strings.LastIndexByte(line, ' ')
		if sp <= 0 {
			continue
		}
		word := strings.TrimSpace(line[:sp])
		score, err := strconv.ParseFloat(strings.TrimSpace(line[sp+1:]), 64)
		if err != nil {
			continue
		}
		m[word] = score
	}
	return m
}

// Classify scores each text independently. The returned slice is always
// index-aligned with texts; the lexicon backend has no failure mode
// beyond an already-cancelled context.
func (c *LexiconClassifier) Classify(ctx context.Context, texts []string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Result, len(texts))
	for i, text := range texts {
		out[i] = c.scoreText(text)
	}
	return out, nil
}

// scoreText averages lexicon hits over matched words. A leading negator
// flips the polarity of the following word. Texts with no lexicon hits
// fall back to a minimum-confidence POSITIVE, mirroring a binary model
// that always emits one of its two classes.
func (c *LexiconClassifier) scoreText(text string) Result {
	if len(text) > maxInputBytes {
		return Result{Label: Positive, Score: 0.5}
	}
	words := splitWords(text)

	var (
		sum     float64
		matched int
		negate  bool
	)
	for _, w := range words {
		if _, ok := c.negated[w]; ok {
			negate = true
			continue
		}
		score, ok := c.lexicon[w]
		if !ok {
			negate = false
			continue
		}
		if negate {
			score = -score
			negate = false
		}
		sum += score
		matched++
	}

	if matched == 0 {
		return Result{Label: Positive, Score: 0.5}
	}
	avg := sum / float64(matched)
	if avg < -1 {
		avg = -1
	} else if avg > 1 {
		avg = 1
	}
	label := Positive
	if avg < 0 {
		label = Negative
	}
	// Confidence grows with the magnitude of the average polarity.
	conf := 0.5 + absFloat(avg)/2
	return Result{Label: label, Score: conf}
}

// splitWords lowercases and splits on non-letter runes, dropping
// anything without letters.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
