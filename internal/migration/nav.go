package migration

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// MigrateNav diffs source and target NAV snapshots by (fund, date) and
// bulk-inserts the delta with skip-duplicate semantics. A failed batch falls
// back to row-by-row insertion so one bad row never blocks the rest, and the
// offender is logged. Ends with a verification pass reporting any still
// missing pairs.
func (p *Pipeline) MigrateNav(ctx context.Context) error {
	missing, err := p.findMissingNavs(ctx)
	if err != nil {
		return err
	}
	p.Log.Info().Int("missing", len(missing)).Msg("computed missing NAV set")
	if len(missing) == 0 {
		p.Log.Info().Msg("no missing NAV records; all NAV records are already imported")
		return nil
	}

	totalImported := 0
	for start := 0; start < len(missing); start += p.PageSize {
		end := start + p.PageSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		err := p.URS.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&batch).Error
		if err == nil {
			totalImported += len(batch)
			p.Log.Info().Int("processed", end).Int("of", len(missing)).Msg("NAV import progress")
			continue
		}

		// Isolate the offending rows.
		p.Log.Warn().Err(err).Msg("NAV batch insert failed; retrying row by row")
		for i := range batch {
			rowErr := p.URS.WithContext(ctx).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&batch[i]).Error
			if rowErr != nil {
				p.Log.Warn().Err(rowErr).Int64("fund_id", batch[i].FundID).
					Time("date", time.Time(batch[i].Date)).
					Msg("failed to import NAV record")
				continue
			}
			totalImported++
		}
	}

	p.Log.Info().Int("imported", totalImported).Msg("completed importing missing NAV records")

	stillMissing, err := p.findMissingNavs(ctx)
	if err != nil {
		return err
	}
	if len(stillMissing) == 0 {
		p.Log.Info().Msg("all NAV records are now imported")
	} else {
		for i, nav := range stillMissing {
			if i == 10 {
				break
			}
			p.Log.Warn().Int64("fund_id", nav.FundID).Time("date", time.Time(nav.Date)).
				Msg("NAV record still missing")
		}
		p.Log.Warn().Int("still_missing", len(stillMissing)).
			Msg("NAV records still missing after import")
	}
	return nil
}

// findMissingNavs loads eligible source NAV rows, maps their products onto
// target funds, and returns the rows whose (fund, date) pair is absent from
// the target. Products without an imported fund are skipped.
func (p *Pipeline) findMissingNavs(ctx context.Context) ([]domain.FundNav, error) {
	var sourceNavs []siar.NAV
	err := p.SIAR.WithContext(ctx).
		Where(`"sysRecStatus" = 1 AND "NAVDate" IS NOT NULL AND "IDProduct" IS NOT NULL`).
		Order(`"IDProduct" asc, "NAVDate" asc`).
		Find(&sourceNavs).Error
	if err != nil {
		return nil, fmt.Errorf("source NAV records: %w", err)
	}

	var targetNavs []domain.FundNav
	err = p.URS.WithContext(ctx).
		Select("fund_id", "date").
		Find(&targetNavs).Error
	if err != nil {
		return nil, fmt.Errorf("target NAV records: %w", err)
	}
	existing := make(map[string]bool, len(targetNavs))
	for _, nav := range targetNavs {
		existing[navKey(nav.FundID, time.Time(nav.Date))] = true
	}

	fundIDsBySiarID, err := p.fundIDsBySiarID(ctx)
	if err != nil {
		return nil, err
	}

	var missing []domain.FundNav
	for _, src := range sourceNavs {
		fundID, ok := fundIDsBySiarID[formatInt(*src.IDProduct)]
		if !ok {
			p.Log.Debug().Int64("nav", src.IDNav).Int64("product", *src.IDProduct).
				Msg("skipping NAV: fund not found")
			continue
		}
		if existing[navKey(fundID, *src.NAVDate)] {
			continue
		}
		missing = append(missing, domain.FundNav{
			FundID:          fundID,
			Date:            dateOf(*src.NAVDate),
			Nav:             decimalOrZero(src.TotalNetAsset),
			NavPerUnit:      decimalOrZero(src.Value),
			OutstandingUnit: decimalOrZero(src.OutstandingUnit),
		})
	}
	return missing, nil
}

// fundIDsBySiarID maps SIAR product ids (as strings) onto target fund ids.
func (p *Pipeline) fundIDsBySiarID(ctx context.Context) (map[string]int64, error) {
	var funds []domain.Fund
	err := p.URS.WithContext(ctx).
		Select("id", "external_code").
		Where("external_code LIKE ?", "SIAR-%").
		Find(&funds).Error
	if err != nil {
		return nil, fmt.Errorf("fund mapping: %w", err)
	}
	out := make(map[string]int64, len(funds))
	for _, fund := range funds {
		if id, ok := siarID(fund.ExternalCode); ok {
			out[id] = fund.ID
		}
	}
	return out, nil
}

func navKey(fundID int64, date time.Time) string {
	return fmt.Sprintf("%d-%s", fundID, date.Format("2006-01-02"))
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
