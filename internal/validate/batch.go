package validate

import "fmt"

// BatchSummary aggregates validation outcomes over a set of records.
type BatchSummary struct {
	Total      int
	Valid      int
	Invalid    int
	Warnings   int
	Duplicates int
	Anomalies  int
}

// Add folds one record's result into the summary.
func (s *BatchSummary) Add(r Result) {
	s.Total++
	if r.IsValid {
		s.Valid++
	} else {
		s.Invalid++
	}
	s.Warnings += len(r.Warnings)
}

// String renders a one-line report suitable for batch logs.
func (s *BatchSummary) String() string {
	return fmt.Sprintf("%d records: %d valid, %d invalid, %d warnings, %d duplicates, %d anomalies",
		s.Total, s.Valid, s.Invalid, s.Warnings, s.Duplicates, s.Anomalies)
}
