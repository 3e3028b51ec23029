package record

// RunSummary holds the per-source counters produced by one ingestion run.
// A summary is created when a source's processing starts and finalized
// when it completes or fails; summaries are never shared across sources.
type RunSummary struct {
	Source string `json:"source"`

	Fetched             int `json:"fetched"`
	DroppedInvalidPhone int `json:"dropped_invalid_phone"`
	DroppedInvalidDate  int `json:"dropped_invalid_date"`
	EmptyDate           int `json:"empty_date"`
	FilteredByWatermark int `json:"filtered_by_watermark"`
	DuplicatesRemoved   int `json:"in_memory_duplicates_removed"`
	Inserted            int `json:"inserted"`
	SkippedDuplicate    int `json:"skipped_duplicate"`
	WriteErrors         int `json:"write_errors"`

	// Err records the failure that aborted this source, if any. Other
	// sources continue unaffected.
	Err error `json:"-"`
}

// Failed reports whether this source's run was aborted by an error.
func (s *RunSummary) Failed() bool {
	return s.Err != nil
}

// Error returns the failure message, or "" when the run succeeded.
func (s *RunSummary) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
