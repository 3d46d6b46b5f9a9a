package themes

import "testing"

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		keyword string
		want    Theme
	}{
		{"login issue", AccountAccess},
		{"access denied", AccountAccess},
		{"transfer speed", Transactions},
		{"slow speed", Transactions},
		{"app design", UserInterface},
		{"support ticket", CustomerSupport},
		{"help center", CustomerSupport},
		{"great app", FeatureRequests},
		{"", FeatureRequests},
	}
	for _, tc := range cases {
		if got := Classify(tc.keyword); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.keyword, got, tc.want)
		}
	}
}

// The "UI" needle is uppercase in the legacy rule table while keywords
// arrive lowercased, so a bare "ui" keyword falls through to the
// default bucket. That behavior is preserved, not fixed.
func TestClassifyLowercaseUIFallsThrough(t *testing.T) {
	if got := Classify("clean ui"); got != FeatureRequests {
		t.Errorf("Classify(\"clean ui\") = %q, want %q", got, FeatureRequests)
	}
	if got := Classify("clean UI"); got != UserInterface {
		t.Errorf("Classify(\"clean UI\") = %q, want %q", got, UserInterface)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "login" (rule 1) beats "support" (rule 4).
	if got := Classify("login support"); got != AccountAccess {
		t.Errorf("Classify(\"login support\") = %q, want %q", got, AccountAccess)
	}
}

func TestClassifyTotality(t *testing.T) {
	known := map[Theme]bool{}
	for _, th := range All() {
		known[th] = true
	}
	inputs := []string{"", "x", "money transfer", "weird 123 !@#", "loginaccesshelp", "\x00\xff"}
	for _, in := range inputs {
		got := Classify(in)
		if !known[got] {
			t.Errorf("Classify(%q) = %q, not one of the five themes", in, got)
		}
	}
}

func TestGroupCoversAllThemes(t *testing.T) {
	got := Group([]string{"login fail", "fast transfer", "new design", "great app"})
	if len(got) != 5 {
		t.Fatalf("expected all 5 theme buckets, got %d", len(got))
	}
	if len(got[AccountAccess]) != 1 || got[AccountAccess][0] != "login fail" {
		t.Errorf("unexpected AccountAccess bucket: %v", got[AccountAccess])
	}
	if len(got[CustomerSupport]) != 0 {
		t.Errorf("expected empty CustomerSupport bucket, got %v", got[CustomerSupport])
	}
	if len(got[FeatureRequests]) != 1 {
		t.Errorf("expected catch-all bucket with 1 entry, got %v", got[FeatureRequests])
	}
}
