// Package reader loads obituary batches from JSON and XLSX files.
package reader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kindredgraph/kindred"
)

// minTextLength is the shortest obituary text considered usable.
const minTextLength = 20

// placeholders are values that mean "no obituary text available".
var placeholders = map[string]bool{
	"n/a": true, "none": true, "unknown": true, "obituary not available": true,
}

// xlsxColumns is the expected header row, matched case-insensitively.
var xlsxColumns = []string{"id", "first_name", "last_name", "birth_date", "death_date", "url", "text"}

// ValidText reports whether obituary text is worth processing.
func ValidText(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < minTextLength {
		return false
	}
	return !placeholders[strings.ToLower(t)]
}

// LoadJSON reads a batch from a JSON array of subjects. Entries with
// unusable text are dropped with a log line, not an error.
func LoadJSON(path string) ([]kindred.Subject, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: reading %s: %w", path, err)
	}
	var all []kindred.Subject
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("reader: parsing %s: %w", path, err)
	}
	return filter(all), nil
}

// LoadXLSX reads a batch from the first sheet of an XLSX workbook. The
// header row names the columns; unrecognized columns are ignored.
func LoadXLSX(path string) ([]kindred.Subject, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("reader: %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reader: reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("reader: %s has no data rows", path)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"id", "text"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("reader: %s is missing required column %q", path, want)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var all []kindred.Subject
	for _, row := range rows[1:] {
		all = append(all, kindred.Subject{
			ID:        cell(row, "id"),
			FirstName: cell(row, "first_name"),
			LastName:  cell(row, "last_name"),
			BirthDate: cell(row, "birth_date"),
			DeathDate: cell(row, "death_date"),
			URL:       cell(row, "url"),
			Text:      cell(row, "text"),
		})
	}
	return filter(all), nil
}

func filter(all []kindred.Subject) []kindred.Subject {
	out := all[:0]
	for _, s := range all {
		if !ValidText(s.Text) {
			slog.Warn("reader: skipping obituary with unusable text", "id", s.ID)
			continue
		}
		out = append(out, s)
	}
	return out
}
