// Package textnorm reduces raw review text to a canonical sequence of
// lemmas: lowercase, alphabetic tokens only, stopwords removed, each
// surviving token lemmatized to its base form.
//
// Normalize is idempotent and best-effort: it never fails the caller.
// Input that cannot be processed comes back unchanged.
package textnorm

import (
	"strings"
	"unicode"
)

// maxInputBytes guards the tokenizer against pathological inputs.
// Oversized text is treated as a processing failure and returned raw.
const maxInputBytes = 1 << 20

// minTokenRunes drops fragments left over from contractions ("don t").
const minTokenRunes = 2

// Normalize lowercases text, tokenizes on non-letter runes, removes
// stopwords and non-alphabetic tokens, and lemmatizes what remains.
// Returns the empty string when nothing survives, and the original
// text unchanged when processing fails.
func Normalize(text string) (out string) {
	if text == "" {
		return ""
	}
	if len(text) > maxInputBytes {
		return text
	}
	// Normalization must never abort the pipeline.
	defer func() {
		if r := recover(); r != nil {
			out = text
		}
	}()

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	lemmas := make([]string, 0, len(words))
	for _, w := range words {
		if runeLen(w) < minTokenRunes {
			continue
		}
		if isStopword(w) {
			continue
		}
		lemma := Lemma(w)
		// A lemma can collapse into a stopword ("was" -> "be");
		// filtering again keeps Normalize a fixed point.
		if runeLen(lemma) < minTokenRunes || isStopword(lemma) {
			continue
		}
		lemmas = append(lemmas, lemma)
	}
	return strings.Join(lemmas, " ")
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
