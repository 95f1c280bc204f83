package migration

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// ReconcileMissingTransactions is the safety net behind ImportTransactions:
// it diffs the full set of eligible source transaction ids against the target
// external codes, replays the shared import primitive for exactly the missing
// set, then reruns the switch-pair backfill and the verification report.
func (p *Pipeline) ReconcileMissingTransactions(ctx context.Context) error {
	missing, sourceTotal, err := p.findMissingTransactionIDs(ctx)
	if err != nil {
		return err
	}
	p.Log.Info().Int("missing", len(missing)).Int("source_total", sourceTotal).
		Msg("computed missing transaction set")
	if len(missing) == 0 {
		p.Log.Info().Msg("no missing transactions; all transactions are already imported")
		return nil
	}

	var total Summary
	for start := 0; start < len(missing); start += p.PageSize {
		end := start + p.PageSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		var rows []siar.Transaction
		err := p.SIAR.WithContext(ctx).
			Preload("SubAccount").
			Where(`"IDTransaction" IN ? AND "IDStatus" = ? AND "IDCategory" <> ?`,
				batch, siar.StatusApproved, siar.CategoryCash).
			Order(`"IDTransaction" asc`).
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("fetch missing batch: %w", err)
		}

		results := make([]RecordResult, len(rows))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.Parallelism)
		for i := range rows {
			i := i
			g.Go(func() error {
				results[i] = p.importMissingTransaction(gctx, &rows[i])
				return nil
			})
		}
		_ = g.Wait()

		var batchSummary Summary
		for i, res := range results {
			if res.Outcome != OutcomeImported {
				p.Log.Debug().Int64("transaction", rows[i].IDTransaction).
					Str("outcome", res.Outcome.String()).Str("reason", res.Detail).
					Msg("missing transaction not imported")
			}
			batchSummary.Add(res)
		}
		total.Merge(batchSummary)
		p.Log.Info().Int("processed", end).Int("of", len(missing)).
			Int("imported", total.Imported).Msg("missing transaction progress")
	}

	p.Log.Info().
		Int("imported", total.Imported).
		Int("skipped", total.Skipped()).
		Int("failed", total.Failed).
		Msg("completed importing missing transactions")

	if err := p.backfillSwitchLinks(ctx); err != nil {
		return fmt.Errorf("switch link backfill: %w", err)
	}

	stillMissing, _, err := p.findMissingTransactionIDs(ctx)
	if err != nil {
		return err
	}
	if len(stillMissing) == 0 {
		p.Log.Info().Msg("all transactions are now imported")
	} else {
		sample := stillMissing
		if len(sample) > 20 {
			sample = sample[:20]
		}
		p.Log.Warn().Int("still_missing", len(stillMissing)).Ints64("sample", sample).
			Msg("transactions still missing after reconciliation")
	}
	return nil
}

// findMissingTransactionIDs returns eligible source ids with no matching
// target external code, ascending, plus the total source count.
func (p *Pipeline) findMissingTransactionIDs(ctx context.Context) ([]int64, int, error) {
	var sourceIDs []int64
	err := p.SIAR.WithContext(ctx).
		Model(&siar.Transaction{}).
		Distinct().
		Where(`"IDStatus" = ? AND "IDCategory" <> ?`, siar.StatusApproved, siar.CategoryCash).
		Order(`"IDTransaction" asc`).
		Pluck("IDTransaction", &sourceIDs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("source transaction ids: %w", err)
	}

	var targetCodes []string
	err = p.URS.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("external_code LIKE ?", "SIAR-%").
		Pluck("external_code", &targetCodes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("target external codes: %w", err)
	}
	imported := make(map[string]bool, len(targetCodes))
	for _, code := range targetCodes {
		imported[code] = true
	}

	var missing []int64
	for _, id := range sourceIDs {
		if !imported[externalCode(id)] {
			missing = append(missing, id)
		}
	}
	return missing, len(sourceIDs), nil
}

// importMissingTransaction replays the import for one source row with point
// lookups instead of the importer's per-page batches.
func (p *Pipeline) importMissingTransaction(ctx context.Context, src *siar.Transaction) RecordResult {
	if src.SubAccount == nil {
		return skippedMissingField("transaction %d: missing sub account", src.IDTransaction)
	}

	var investor domain.Investor
	err := p.URS.WithContext(ctx).
		Where("external_code = ?", externalCode(src.SubAccount.IDCustomer)).
		First(&investor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return skippedUnresolvedLink("transaction %d: investor %s not found",
			src.IDTransaction, externalCode(src.SubAccount.IDCustomer))
	}
	if err != nil {
		return failed(err)
	}

	var fund domain.Fund
	err = p.URS.WithContext(ctx).
		Where("external_code = ?", externalCode(src.IDProduct)).
		First(&fund).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return skippedUnresolvedLink("transaction %d: fund %s not found",
			src.IDTransaction, externalCode(src.IDProduct))
	}
	if err != nil {
		return failed(err)
	}

	var pairID *int64
	if src.SourceIDTransaction != nil {
		var pair domain.Transaction
		err = p.URS.WithContext(ctx).
			Select("id").
			Where("external_code = ?", externalCode(*src.SourceIDTransaction)).
			First(&pair).Error
		switch {
		case err == nil:
			pairID = &pair.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// left null; backfilled once the pair exists
		default:
			return failed(err)
		}
	}

	accountID, err := p.findOrCreateAccount(ctx, &investor, &fund, src)
	if err != nil {
		return failed(err)
	}

	tx, result := buildTransaction(src, investor.ID, fund.ID, accountID, pairID)
	if result.Outcome != OutcomeImported {
		return result
	}
	if err := p.URS.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(tx).Error; err != nil {
		return failed(err)
	}
	return imported()
}

func (p *Pipeline) findOrCreateAccount(ctx context.Context, investor *domain.Investor, fund *domain.Fund, src *siar.Transaction) (int64, error) {
	var account domain.InvestorAccount
	err := p.URS.WithContext(ctx).
		Where("investor_id = ? AND fund_id = ?", investor.ID, fund.ID).
		First(&account).Error
	if err == nil {
		return account.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	account = domain.InvestorAccount{
		InvestorID:    investor.ID,
		FundID:        fund.ID,
		AccountNumber: src.SubAccount.NoAccount,
	}
	if err := p.URS.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&account).Error; err != nil {
		return 0, err
	}
	// A concurrent worker may have won the insert; read the surviving row.
	if err := p.URS.WithContext(ctx).
		Where("investor_id = ? AND fund_id = ?", investor.ID, fund.ID).
		First(&account).Error; err != nil {
		return 0, err
	}
	return account.ID, nil
}
