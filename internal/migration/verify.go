package migration

import (
	"context"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// CountEntry is one investor's transaction count on one side of the diff.
type CountEntry struct {
	Key   string // SIAR customer id, or external code for target-only rows
	Name  string
	Count int64
}

// CountMismatch is an investor present on both sides with differing counts.
type CountMismatch struct {
	Key                      string
	Name                     string
	SourceCount, TargetCount int64
}

// TransactionCountReport is the diagnostic output of the verification pass.
// It reports, never corrects; operators re-run steps based on it.
type TransactionCountReport struct {
	Matched      int
	OnlyInSource []CountEntry
	OnlyInTarget []CountEntry
	Mismatches   []CountMismatch

	SourceInvestors, TargetInvestors     int
	SourceTransactions, TargetTransactions int64
}

// Clean reports whether both systems agree exactly.
func (r *TransactionCountReport) Clean() bool {
	return len(r.OnlyInSource) == 0 && len(r.OnlyInTarget) == 0 && len(r.Mismatches) == 0
}

// Write logs the report in operator-readable form.
func (r *TransactionCountReport) Write(log zerolog.Logger) {
	log.Info().
		Int("matched", r.Matched).
		Int("only_in_source", len(r.OnlyInSource)).
		Int("only_in_target", len(r.OnlyInTarget)).
		Int("mismatches", len(r.Mismatches)).
		Int64("source_transactions", r.SourceTransactions).
		Int64("target_transactions", r.TargetTransactions).
		Int64("difference", r.SourceTransactions-r.TargetTransactions).
		Msg("transaction count verification")

	for i, e := range top(r.OnlyInSource, 10) {
		log.Warn().Int("rank", i+1).Str("id_customer", e.Key).Str("name", e.Name).
			Int64("count", e.Count).Msg("investor only in source")
	}
	for i, e := range top(r.OnlyInTarget, 10) {
		log.Warn().Int("rank", i+1).Str("external_code", e.Key).Str("name", e.Name).
			Int64("count", e.Count).Msg("investor only in target")
	}
	mismatches := append([]CountMismatch(nil), r.Mismatches...)
	sort.Slice(mismatches, func(i, j int) bool {
		return abs(mismatches[i].SourceCount-mismatches[i].TargetCount) >
			abs(mismatches[j].SourceCount-mismatches[j].TargetCount)
	})
	if len(mismatches) > 20 {
		mismatches = mismatches[:20]
	}
	for i, m := range mismatches {
		log.Warn().Int("rank", i+1).Str("id_customer", m.Key).Str("name", m.Name).
			Int64("source", m.SourceCount).Int64("target", m.TargetCount).
			Msg("transaction count mismatch")
	}

	if r.Clean() {
		log.Info().Msg("all transactions imported correctly")
	} else {
		log.Warn().Msg("some transactions are missing or mismatched")
	}
}

const targetCensusSQL = `
SELECT count(t.id) AS c, i.external_code AS external_code, i.first_name AS first_name
FROM transactions t
INNER JOIN investors i ON i.id = t.investor_id
GROUP BY i.external_code, i.first_name
ORDER BY c DESC`

type targetCensusRow struct {
	C            int64   `gorm:"column:c"`
	ExternalCode string  `gorm:"column:external_code"`
	FirstName    *string `gorm:"column:first_name"`
}

// VerifyTransactionCounts recomputes per-investor transaction counts in both
// systems and diffs them.
func (p *Pipeline) VerifyTransactionCounts(ctx context.Context) (*TransactionCountReport, error) {
	var sourceRows []investorWithCount
	if err := p.SIAR.WithContext(ctx).Raw(investorCensusSQL).Scan(&sourceRows).Error; err != nil {
		return nil, err
	}
	var targetRows []targetCensusRow
	if err := p.URS.WithContext(ctx).Raw(targetCensusSQL).Scan(&targetRows).Error; err != nil {
		return nil, err
	}

	report := &TransactionCountReport{
		SourceInvestors: len(sourceRows),
		TargetInvestors: len(targetRows),
	}

	type sideEntry struct {
		name  string
		count int64
	}
	source := map[string]sideEntry{}
	for _, row := range sourceRows {
		name := ""
		if row.FirstName != nil {
			name = *row.FirstName
		}
		source[formatInt(row.IDCustomer)] = sideEntry{name: name, count: row.C}
		report.SourceTransactions += row.C
	}

	target := map[string]sideEntry{}
	targetCodes := map[string]string{}
	for _, row := range targetRows {
		report.TargetTransactions += row.C
		id, ok := siarID(row.ExternalCode)
		if !ok {
			continue
		}
		name := ""
		if row.FirstName != nil {
			name = *row.FirstName
		}
		target[id] = sideEntry{name: name, count: row.C}
		targetCodes[id] = row.ExternalCode
	}

	for id, s := range source {
		t, ok := target[id]
		switch {
		case !ok:
			report.OnlyInSource = append(report.OnlyInSource, CountEntry{Key: id, Name: s.name, Count: s.count})
		case s.count != t.count:
			report.Mismatches = append(report.Mismatches, CountMismatch{
				Key: id, Name: s.name, SourceCount: s.count, TargetCount: t.count,
			})
		default:
			report.Matched++
		}
	}
	for id, t := range target {
		if _, ok := source[id]; !ok {
			report.OnlyInTarget = append(report.OnlyInTarget, CountEntry{Key: targetCodes[id], Name: t.name, Count: t.count})
		}
	}

	sort.Slice(report.OnlyInSource, func(i, j int) bool {
		return report.OnlyInSource[i].Count > report.OnlyInSource[j].Count
	})
	sort.Slice(report.OnlyInTarget, func(i, j int) bool {
		return report.OnlyInTarget[i].Count > report.OnlyInTarget[j].Count
	})
	return report, nil
}

func top(entries []CountEntry, n int) []CountEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
