package migration

import (
	"context"
	"fmt"

	"urs-migrator/internal/domain"
)

// generateHoldingsSQL appends one holding row per transaction that has none
// yet. Units before and after are running sums over the account's transaction
// history for the fund, ordered by transaction date with the row id as the
// tie-break so both windows walk the same sequence.
const generateHoldingsSQL = `
INSERT INTO investor_holdings
	(investor_id, investor_account_id, fund_id, transaction_id,
	 units_before, units_after, delta_units, created_at, updated_at)
SELECT s.investor_id, s.investor_account_id, s.fund_id, s.transaction_id,
	s.units_before, s.units_after, s.delta_units,
	CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
FROM (
	SELECT
		t.investor_id,
		t.investor_account_id,
		t.fund_id,
		t.id AS transaction_id,
		COALESCE(SUM(
			CASE t.transaction_type
				WHEN 'SUBSCRIPTION'  THEN t.units
				WHEN 'SWITCHING_IN'  THEN t.units
				WHEN 'REDEMPTION'    THEN -t.units
				WHEN 'SWITCHING_OUT' THEN -t.units
			END
		) OVER (
			PARTITION BY t.investor_account_id, t.fund_id
			ORDER BY t.transaction_date, t.id
			ROWS BETWEEN UNBOUNDED PRECEDING AND 1 PRECEDING
		), 0) AS units_before,
		SUM(
			CASE t.transaction_type
				WHEN 'SUBSCRIPTION'  THEN t.units
				WHEN 'SWITCHING_IN'  THEN t.units
				WHEN 'REDEMPTION'    THEN -t.units
				WHEN 'SWITCHING_OUT' THEN -t.units
			END
		) OVER (
			PARTITION BY t.investor_account_id, t.fund_id
			ORDER BY t.transaction_date, t.id
			ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
		) AS units_after,
		CASE t.transaction_type
			WHEN 'SUBSCRIPTION'  THEN t.units
			WHEN 'SWITCHING_IN'  THEN t.units
			WHEN 'REDEMPTION'    THEN -t.units
			WHEN 'SWITCHING_OUT' THEN -t.units
		END AS delta_units
	FROM transactions t
) s
LEFT JOIN investor_holdings ih ON ih.transaction_id = s.transaction_id
WHERE ih.transaction_id IS NULL`

// GenerateHoldings derives the per-transaction unit position ledger from the
// migrated transactions. Running it again only appends rows for transactions
// added since the last run; existing holding rows are never rewritten, so the
// transaction and missing-transaction steps must be complete first.
func (p *Pipeline) GenerateHoldings(ctx context.Context) error {
	var before, txCount int64
	if err := p.URS.WithContext(ctx).Model(&domain.InvestorHolding{}).Count(&before).Error; err != nil {
		return fmt.Errorf("count holdings: %w", err)
	}
	if err := p.URS.WithContext(ctx).Model(&domain.Transaction{}).Count(&txCount).Error; err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if before >= txCount {
		p.Log.Info().Int64("holdings", before).Int64("transactions", txCount).
			Msg("holdings already cover every transaction, nothing to do")
		return nil
	}

	result := p.URS.WithContext(ctx).Exec(generateHoldingsSQL)
	if result.Error != nil {
		return fmt.Errorf("generate holdings: %w", result.Error)
	}

	p.Log.Info().
		Int64("inserted", result.RowsAffected).
		Int64("existing", before).
		Msg("completed generating investor holdings")
	return nil
}
