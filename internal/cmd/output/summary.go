package output

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

// summaryColumns lists the counters shown per source, in display order.
// Labels are derived from the summary's json tags so the table and the
// JSON output stay in sync.
var summaryColumns = []struct {
	tag   string
	value func(s record.RunSummary) int
}{
	{"fetched", func(s record.RunSummary) int { return s.Fetched }},
	{"dropped_invalid_phone", func(s record.RunSummary) int { return s.DroppedInvalidPhone }},
	{"dropped_invalid_date", func(s record.RunSummary) int { return s.DroppedInvalidDate }},
	{"empty_date", func(s record.RunSummary) int { return s.EmptyDate }},
	{"filtered_by_watermark", func(s record.RunSummary) int { return s.FilteredByWatermark }},
	{"in_memory_duplicates_removed", func(s record.RunSummary) int { return s.DuplicatesRemoved }},
	{"inserted", func(s record.RunSummary) int { return s.Inserted }},
	{"skipped_duplicate", func(s record.RunSummary) int { return s.SkippedDuplicate }},
	{"write_errors", func(s record.RunSummary) int { return s.WriteErrors }},
}

// SummaryData converts run summaries to tabular form, one row per source.
func SummaryData(summaries []record.RunSummary) Data {
	caser := cases.Title(language.English)
	headers := []string{"Source"}
	for _, col := range summaryColumns {
		headers = append(headers, caser.String(strings.ReplaceAll(col.tag, "_", " ")))
	}
	headers = append(headers, "Status")

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{s.Source}
		for _, col := range summaryColumns {
			row = append(row, strconv.Itoa(col.value(s)))
		}
		status := "ok"
		if s.Failed() {
			status = "FAILED: " + s.Error()
		}
		rows = append(rows, append(row, status))
	}
	return Data{Headers: headers, Rows: rows}
}
