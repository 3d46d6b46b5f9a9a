package textnorm

import "strings"

// irregular maps common irregular forms straight to their base. Every
// value is a fixed point of the suffix rules below.
var irregular = map[string]string{
	"was": "be", "were": "be", "been": "be", "being": "be",
	"went": "go", "gone": "go", "goes": "go",
	"made": "make", "making": "make",
	"took": "take", "taken": "take",
	"got": "get", "gotten": "get",
	"said": "say", "saw": "see", "seen": "see",
	"done": "do", "did": "do",
	"came": "come", "gave": "give", "given": "give",
	"knew": "know", "known": "know",
	"thought": "think", "brought": "bring", "bought": "buy",
	"felt": "feel", "ran": "run", "spent": "spend",
	"built": "build", "sat": "sit", "held": "hold", "stood": "stand",
	"won": "win", "chose": "choose", "chosen": "choose",
	"wrote": "write", "written": "write",
	"broke": "break", "broken": "break",
	"stole": "steal", "stolen": "steal",
	"froze": "freeze", "frozen": "freeze",
	"paid": "pay", "sent": "send", "kept": "keep",
	"lost": "lose", "found": "find", "told": "tell",
	"left": "leave", "men": "man", "women": "woman",
	// Fragments left by tokenizing contractions ("don't" -> "don", "t").
	"don": "do", "doesn": "do", "didn": "do",
	"isn": "be", "wasn": "be", "aren": "be", "weren": "be",
	"couldn": "could", "wouldn": "would", "shouldn": "should",
	"hasn": "have", "haven": "have", "hadn": "have",
	"children": "child", "better": "good", "best": "good",
	"worse": "bad", "worst": "bad",
}

// ingKeep lists -ing words that are their own base form.
var ingKeep = map[string]struct{}{
	"nothing": {}, "something": {}, "everything": {}, "anything": {},
	"morning": {}, "evening": {},
}

// Lemma reduces a lowercase word to its base form: irregular lookup,
// then plural and participle suffix rules applied as a cascade. The
// cascade is iterated to a fixed point so that Lemma(Lemma(w)) == Lemma(w).
func Lemma(word string) string {
	for i := 0; i < 3; i++ {
		next := lemmaOnce(word)
		if next == word {
			return word
		}
		word = next
	}
	return word
}

func lemmaOnce(word string) string {
	if base, ok := irregular[word]; ok {
		return base
	}
	w := depluralize(word)
	return departiciple(w)
}

func depluralize(w string) string {
	n := len(w)
	switch {
	case strings.HasSuffix(w, "ies") && n > 4:
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:n-2]
	case strings.HasSuffix(w, "zzes"):
		return w[:n-2]
	case strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "xes"):
		return w[:n-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") &&
		!strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is") && n > 3:
		return w[:n-1]
	}
	return w
}

func departiciple(w string) string {
	n := len(w)
	if strings.HasSuffix(w, "ing") && n > 5 {
		if _, keep := ingKeep[w]; keep {
			return w
		}
		return stripParticiple(w[:n-3])
	}
	if strings.HasSuffix(w, "ied") && n > 4 {
		return w[:n-3] + "y"
	}
	// -eed stays ("speed", "need", "agreed").
	if strings.HasSuffix(w, "ed") && !strings.HasSuffix(w, "eed") && n > 4 {
		return stripParticiple(w[:n-2])
	}
	return w
}

// stripParticiple finishes an -ing/-ed stem: a doubled consonant is
// collapsed ("stopp" -> "stop"), otherwise a dropped final e may be
// restored ("mak" -> "make"). Never both.
func stripParticiple(stem string) string {
	if d := undouble(stem); d != stem {
		return d
	}
	return restoreE(stem)
}

// undouble collapses a doubled final consonant ("stopp" -> "stop").
// l and s doublings are kept ("call", "miss").
func undouble(s string) string {
	n := len(s)
	if n >= 3 && s[n-1] == s[n-2] && isConsonant(s[n-1]) && s[n-1] != 'l' && s[n-1] != 's' {
		return s[:n-1]
	}
	return s
}

// restoreE appends the dropped final e after a consonant-vowel-consonant
// tail ("updat" -> "update", "mak" -> "make").
func restoreE(s string) string {
	n := len(s)
	if n < 3 {
		return s
	}
	c1, v, c2 := s[n-3], s[n-2], s[n-1]
	if isConsonant(c1) && !isConsonant(v) && isConsonant(c2) &&
		c2 != 'w' && c2 != 'x' && c2 != 'y' {
		return s + "e"
	}
	return s
}

func isConsonant(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return b >= 'a' && b <= 'z'
}
