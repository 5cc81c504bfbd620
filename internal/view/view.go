// Package view derives the presentation sets the portal pages show: the
// newest-first listings, the search and category filters, the CSV export,
// and the level histogram for the dashboard chart. Everything here is a pure
// projection of the record store; nothing in this package is authoritative.
package view

import (
	"strings"

	"github.com/indokarya/registration-portal/internal/types"
)

// NewestFirst returns records in reverse storage order without mutating the
// input.
func NewestFirst(records []types.SubmissionRecord) []types.SubmissionRecord {
	out := make([]types.SubmissionRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}

// Tail keeps the last n records in storage order. n <= 0 keeps nothing.
func Tail(records []types.SubmissionRecord, n int) []types.SubmissionRecord {
	if n <= 0 {
		return nil
	}
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// FilterQuery applies the list view's live search: a case-insensitive
// substring match across name, school, and category. An empty query keeps
// everything.
func FilterQuery(records []types.SubmissionRecord, query string) []types.SubmissionRecord {
	q := strings.ToLower(query)
	if q == "" {
		return records
	}

	var out []types.SubmissionRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.SchoolOrigin), q) ||
			strings.Contains(strings.ToLower(r.CompetitionCategory), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterCategory keeps records whose category matches exactly. An empty
// category keeps everything.
func FilterCategory(records []types.SubmissionRecord, category string) []types.SubmissionRecord {
	if category == "" {
		return records
	}

	var out []types.SubmissionRecord
	for _, r := range records {
		if r.CompetitionCategory == category {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct category values in first-seen order, for
// the dashboard filter dropdown.
func Categories(records []types.SubmissionRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if seen[r.CompetitionCategory] {
			continue
		}
		seen[r.CompetitionCategory] = true
		out = append(out, r.CompetitionCategory)
	}
	return out
}

// LevelHistogram counts records per level in first-seen order, feeding the
// dashboard bar chart.
func LevelHistogram(records []types.SubmissionRecord) []types.LevelCount {
	index := make(map[string]int)
	var out []types.LevelCount
	for _, r := range records {
		i, ok := index[r.Level]
		if !ok {
			index[r.Level] = len(out)
			out = append(out, types.LevelCount{Level: r.Level})
			i = len(out) - 1
		}
		out[i].Count++
	}
	return out
}

// Find locates a record by id for the detail view.
func Find(records []types.SubmissionRecord, id string) *types.SubmissionRecord {
	if id == "" {
		return nil
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}
