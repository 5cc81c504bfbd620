package view

import (
	"strings"

	"github.com/indokarya/registration-portal/internal/types"
)

// CSV column order is fixed; the export is consumed by spreadsheets that
// expect it.
var csvHeader = []string{
	"name",
	"schoolOrigin",
	"competitionCategory",
	"level",
	"file",
	"uploadedAt",
}

// Every field is quote-wrapped with embedded quotes doubled, regardless of
// content.
func csvEscape(val string) string {
	return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
}

// CSV renders the given set as the dashboard export.
func CSV(records []types.SubmissionRecord) string {
	var b strings.Builder

	b.WriteString(strings.Join(csvHeader, ","))
	for _, r := range records {
		b.WriteByte('\n')
		fields := []string{
			csvEscape(r.Name),
			csvEscape(r.SchoolOrigin),
			csvEscape(r.CompetitionCategory),
			csvEscape(r.Level),
			csvEscape(r.File),
			csvEscape(r.UploadedAt),
		}
		b.WriteString(strings.Join(fields, ","))
	}
	b.WriteByte('\n')

	return b.String()
}
