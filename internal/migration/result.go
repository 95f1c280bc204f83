package migration

import "fmt"

// Outcome tags the fate of one processed source record.
type Outcome int

const (
	OutcomeImported Outcome = iota
	OutcomeSkippedMissingField
	OutcomeSkippedUnresolvedLink
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImported:
		return "imported"
	case OutcomeSkippedMissingField:
		return "skipped_missing_field"
	case OutcomeSkippedUnresolvedLink:
		return "skipped_unresolved_link"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// RecordResult is the typed replacement for ad-hoc error payloads: one value
// per processed record, aggregated into a per-step Summary.
type RecordResult struct {
	Outcome Outcome
	Detail  string
}

func imported() RecordResult {
	return RecordResult{Outcome: OutcomeImported}
}

func skippedMissingField(format string, args ...any) RecordResult {
	return RecordResult{Outcome: OutcomeSkippedMissingField, Detail: fmt.Sprintf(format, args...)}
}

func skippedUnresolvedLink(format string, args ...any) RecordResult {
	return RecordResult{Outcome: OutcomeSkippedUnresolvedLink, Detail: fmt.Sprintf(format, args...)}
}

func failed(err error) RecordResult {
	return RecordResult{Outcome: OutcomeFailed, Detail: err.Error()}
}

// Summary aggregates record outcomes for one step or one unit of work.
type Summary struct {
	Imported              int
	SkippedMissingField   int
	SkippedUnresolvedLink int
	Failed                int
}

func (s *Summary) Add(r RecordResult) {
	switch r.Outcome {
	case OutcomeImported:
		s.Imported++
	case OutcomeSkippedMissingField:
		s.SkippedMissingField++
	case OutcomeSkippedUnresolvedLink:
		s.SkippedUnresolvedLink++
	case OutcomeFailed:
		s.Failed++
	}
}

func (s *Summary) Merge(other Summary) {
	s.Imported += other.Imported
	s.SkippedMissingField += other.SkippedMissingField
	s.SkippedUnresolvedLink += other.SkippedUnresolvedLink
	s.Failed += other.Failed
}

func (s Summary) Skipped() int {
	return s.SkippedMissingField + s.SkippedUnresolvedLink
}
