package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter returns the records whose configured text fields contain query,
// compared with Unicode case folding. A record matches when any field
// matches. A blank query returns every record. Order is preserved and the
// input is never modified.
func Filter(records []Record, query string, fields []string) []Record {
	if strings.TrimSpace(query) == "" {
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}

	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matches(folder, r, needle, fields) {
			out = append(out, r)
		}
	}
	return out
}

func matches(folder cases.Caser, r Record, needle string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(folder.String(r.Field(f)), needle) {
			return true
		}
	}
	return false
}
