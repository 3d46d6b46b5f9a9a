package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"review_insights/internal/insights"
	"review_insights/internal/themes"
)

func TestWriteFormat(t *testing.T) {
	byBank := map[string]insights.Insight{
		"Dashen Bank": {
			Drivers:    []themes.Theme{themes.Transactions, themes.UserInterface},
			PainPoints: []themes.Theme{themes.AccountAccess},
		},
		"Bank of Abyssinia": {
			Drivers:    []themes.Theme{},
			PainPoints: []themes.Theme{themes.CustomerSupport},
		},
	}

	var sb strings.Builder
	if err := Write(&sb, byBank); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "Bank: Bank of Abyssinia\n" +
		"  Drivers: \n" +
		"  Pain Points: Customer Support\n\n" +
		"Bank: Dashen Bank\n" +
		"  Drivers: Transaction Performance, User Interface & Experience\n" +
		"  Pain Points: Account Access Issues\n\n"
	if sb.String() != want {
		t.Errorf("report mismatch:\ngot:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestSaveCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "insights.txt")
	byBank := map[string]insights.Insight{
		"X": {Drivers: []themes.Theme{themes.Transactions}, PainPoints: []themes.Theme{}},
	}
	if err := Save(path, byBank); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Bank: X") {
		t.Errorf("unexpected report content: %s", data)
	}
}
