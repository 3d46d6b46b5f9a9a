// Package report serializes per-bank insights into the plain-text
// summary consumed by analysts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"review_insights/internal/insights"
	"review_insights/internal/themes"
)

// Write renders one block per bank, banks in sorted order:
//
//	Bank: <name>
//	  Drivers: <comma-joined themes>
//	  Pain Points: <comma-joined themes>
func Write(w io.Writer, byBank map[string]insights.Insight) error {
	banks := make([]string, 0, len(byBank))
	for bank := range byBank {
		banks = append(banks, bank)
	}
	sort.Strings(banks)

	for _, bank := range banks {
		ins := byBank[bank]
		if _, err := fmt.Fprintf(w, "Bank: %s\n", bank); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Drivers: %s\n", joinThemes(ins.Drivers)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Pain Points: %s\n\n", joinThemes(ins.PainPoints)); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the report to path, creating the parent directory when
// needed.
func Save(path string, byBank map[string]insights.Insight) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	return Write(f, byBank)
}

func joinThemes(list []themes.Theme) string {
	parts := make([]string, len(list))
	for i, t := range list {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
