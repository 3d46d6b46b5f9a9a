// Package themes maps keywords onto a fixed five-theme taxonomy using
// an ordered rule table: first matching substring wins, anything else
// lands in the Feature Requests bucket. Classification is pure, total,
// and deterministic.
package themes

import "strings"

// Theme is one of the five fixed taxonomy labels.
type Theme string

const (
	AccountAccess   Theme = "Account Access Issues"
	Transactions    Theme = "Transaction Performance"
	UserInterface   Theme = "User Interface & Experience"
	CustomerSupport Theme = "Customer Support"
	FeatureRequests Theme = "Feature Requests"
)

// All lists the taxonomy in rule order, default bucket last.
func All() []Theme {
	return []Theme{AccountAccess, Transactions, UserInterface, CustomerSupport, FeatureRequests}
}

type rule struct {
	needles []string
	theme   Theme
}

// rules preserves the legacy table verbatim, including the uppercase
// "UI" needle. Matching is case-sensitive and keywords arrive
// lowercased, so that needle can never fire; "design" carries the
// User Interface & Experience rule on its own.
var rules = []rule{
	{needles: []string{"login", "access"}, theme: AccountAccess},
	{needles: []string{"transfer", "speed"}, theme: Transactions},
	{needles: []string{"UI", "design"}, theme: UserInterface},
	{needles: []string{"support", "help"}, theme: CustomerSupport},
}

// Classify returns the theme of the first rule whose needle occurs in
// keyword, or FeatureRequests when no rule matches.
func Classify(keyword string) Theme {
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(keyword, needle) {
				return r.theme
			}
		}
	}
	return FeatureRequests
}

// Group buckets keywords by their classified theme. Every theme key is
// present in the result, possibly with an empty slice, matching the
// shape of the historical keyword-cluster report.
func Group(keywords []string) map[Theme][]string {
	out := make(map[Theme][]string, len(All()))
	for _, t := range All() {
		out[t] = []string{}
	}
	for _, kw := range keywords {
		t := Classify(kw)
		out[t] = append(out[t], kw)
	}
	return out
}
