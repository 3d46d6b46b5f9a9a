// Package keywords ranks the most distinctive terms of a review corpus
// by TF-IDF over unigram and bigram features.
//
// Extraction is a corpus-level statistic: feature selection depends only
// on corpus content and topN, never on per-review state. A degenerate
// corpus yields an empty result rather than an error.
package keywords

import (
	"math"
	"sort"
	"strings"
)

// DefaultTopN matches the historical vocabulary cap.
const DefaultTopN = 20

// maxFeatures caps the candidate vocabulary before ranking.
const maxFeatures = 50000

// Extract returns the topN highest-scoring unigram and bigram features
// across the corpus, ranked by descending aggregate TF-IDF with
// lexicographic tie-breaking. Documents are pre-normalized text; terms
// are split on whitespace. Empty documents contribute nothing.
func Extract(corpus []string, topN int) []string {
	if topN <= 0 {
		topN = DefaultTopN
	}
	scored := score(corpus)
	if len(scored) == 0 {
		return []string{}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].term < scored[j].term
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}
	out := make([]string, len(scored))
	for i, f := range scored {
		out[i] = f.term
	}
	return out
}

type feature struct {
	term  string
	score float64
}

// score builds term and document frequencies for unigrams+bigrams and
// aggregates length-normalized TF weighted by smoothed IDF across the
// corpus.
func score(corpus []string) []feature {
	docCount := 0
	df := make(map[string]int)
	tfs := make([]map[string]int, 0, len(corpus))
	lens := make([]int, 0, len(corpus))

	for _, doc := range corpus {
		terms := ngrams(doc)
		if len(terms) == 0 {
			continue
		}
		docCount++
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			if _, seen := tf[t]; !seen {
				if len(df) >= maxFeatures {
					if _, known := df[t]; !known {
						continue
					}
				}
				df[t]++
			}
			tf[t]++
		}
		tfs = append(tfs, tf)
		lens = append(lens, len(terms))
	}
	if docCount == 0 {
		return nil
	}

	agg := make(map[string]float64, len(df))
	for i, tf := range tfs {
		docLen := float64(lens[i])
		for term, count := range tf {
			agg[term] += (float64(count) / docLen) * idf(docCount, df[term])
		}
	}

	out := make([]feature, 0, len(agg))
	for term, s := range agg {
		out = append(out, feature{term: term, score: s})
	}
	return out
}

// idf is the smoothed inverse document frequency ln((1+n)/(1+df)) + 1,
// which keeps corpus-wide terms at a positive floor.
func idf(docCount, docFreq int) float64 {
	return math.Log(float64(1+docCount)/float64(1+docFreq)) + 1
}

// ngrams returns unigrams followed by the document's bigrams.
func ngrams(doc string) []string {
	words := strings.Fields(doc)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words)*2-1)
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}
