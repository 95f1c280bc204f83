package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// investorWithCount is one row of the source-side investor census, ordered by
// transaction count descending so big investors surface errors early.
type investorWithCount struct {
	C          int64   `gorm:"column:c"`
	IDCustomer int64   `gorm:"column:id_customer"`
	FirstName  *string `gorm:"column:first_name"`
}

const investorCensusSQL = `
SELECT count(t."IDTransaction") AS c, t."IDCustomer" AS id_customer, cus."FirstName" AS first_name
FROM "TTransaction" t
INNER JOIN "TCustomer" cus ON cus."IDCustomer" = t."IDCustomer"
WHERE t."IDStatus" = 'APPROVED' AND t."IDCategory" <> 'CASHD'
GROUP BY t."IDCustomer", cus."FirstName"
ORDER BY c DESC`

type investorResult struct {
	IDCustomer int64
	Name       string
	Summary    Summary
	Err        error
}

// ImportTransactions bulk-imports all approved, non-cash transactions grouped
// by source investor, with bounded parallelism across investors. A failed
// investor is logged and counted, never fatal. A second pass backfills switch
// pair links, and a verification report compares per-investor counts.
func (p *Pipeline) ImportTransactions(ctx context.Context) error {
	var investors []investorWithCount
	if err := p.SIAR.WithContext(ctx).Raw(investorCensusSQL).Scan(&investors).Error; err != nil {
		return fmt.Errorf("investor census: %w", err)
	}
	p.Log.Info().Int("investors", len(investors)).Msg("starting transaction import")

	results := make([]investorResult, len(investors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Parallelism)
	for i := range investors {
		i := i
		inv := investors[i]
		g.Go(func() error {
			results[i] = p.importInvestorTransactions(gctx, inv)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in results

	var total Summary
	succeeded := 0
	for _, res := range results {
		if res.Err != nil {
			p.Log.Warn().Int64("id_customer", res.IDCustomer).Str("name", res.Name).
				Err(res.Err).Msg("failed to process investor")
			continue
		}
		succeeded++
		total.Merge(res.Summary)
	}
	p.Log.Info().
		Int("investors", succeeded).
		Int("imported", total.Imported).
		Int("skipped", total.Skipped()).
		Msg("completed transaction import")

	if err := p.backfillSwitchLinks(ctx); err != nil {
		return fmt.Errorf("switch link backfill: %w", err)
	}

	report, err := p.VerifyTransactionCounts(ctx)
	if err != nil {
		return fmt.Errorf("verify transaction counts: %w", err)
	}
	report.Write(p.Log)
	return nil
}

func (p *Pipeline) importInvestorTransactions(ctx context.Context, src investorWithCount) investorResult {
	res := investorResult{IDCustomer: src.IDCustomer}
	if src.FirstName != nil {
		res.Name = *src.FirstName
	}

	var investor domain.Investor
	err := p.URS.WithContext(ctx).
		Where("external_code = ?", externalCode(src.IDCustomer)).
		First(&investor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		res.Err = fmt.Errorf("investor not found in target database")
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}

	p.Log.Debug().Int64("id_customer", src.IDCustomer).Int64("transactions", src.C).
		Msg("processing investor")

	var lastTransactionID int64
	for {
		var page []siar.Transaction
		q := p.SIAR.WithContext(ctx).
			Preload("SubAccount").
			Where(`"IDStatus" = ? AND "IDCategory" <> ? AND "IDCustomer" = ?`,
				siar.StatusApproved, siar.CategoryCash, src.IDCustomer).
			Where(`"IDTransaction" > ?`, lastTransactionID).
			Order(`"IDTransaction" asc`).
			Limit(p.PageSize)
		if err := q.Find(&page).Error; err != nil {
			res.Err = err
			return res
		}
		if len(page) == 0 {
			break
		}

		summary, err := p.importTransactionPage(ctx, &investor, page)
		if err != nil {
			res.Err = err
			return res
		}
		res.Summary.Merge(summary)

		lastTransactionID = page[len(page)-1].IDTransaction
	}
	return res
}

// importTransactionPage resolves funds, switch pairs and accounts for one
// page with batched lookups, then bulk-inserts with skip-duplicate semantics.
func (p *Pipeline) importTransactionPage(ctx context.Context, investor *domain.Investor, page []siar.Transaction) (Summary, error) {
	var summary Summary

	fundCodes := map[string]bool{}
	pairCodes := map[string]bool{}
	for i := range page {
		fundCodes[externalCode(page[i].IDProduct)] = true
		if page[i].SourceIDTransaction != nil {
			pairCodes[externalCode(*page[i].SourceIDTransaction)] = true
		}
	}

	fundsByCode, err := p.fundsByExternalCodes(ctx, keys(fundCodes))
	if err != nil {
		return summary, err
	}
	pairIDsByCode, err := p.transactionIDsByExternalCodes(ctx, keys(pairCodes))
	if err != nil {
		return summary, err
	}

	// First resolve funds so only resolvable rows drive account creation.
	type pendingTx struct {
		src  *siar.Transaction
		fund *domain.Fund
	}
	var pending []pendingTx
	accountNumbers := map[int64]*string{} // fund id -> sub account number
	for i := range page {
		src := &page[i]
		if src.SubAccount == nil {
			summary.Add(skippedMissingField("transaction %d: missing sub account", src.IDTransaction))
			continue
		}
		fund, ok := fundsByCode[externalCode(src.IDProduct)]
		if !ok {
			p.Log.Debug().Int64("transaction", src.IDTransaction).Int64("product", src.IDProduct).
				Msg("skipping transaction: fund not found")
			summary.Add(skippedUnresolvedLink("transaction %d: fund %s not found",
				src.IDTransaction, externalCode(src.IDProduct)))
			continue
		}
		if _, seen := accountNumbers[fund.ID]; !seen {
			accountNumbers[fund.ID] = src.SubAccount.NoAccount
		}
		pending = append(pending, pendingTx{src: src, fund: fund})
	}
	if len(pending) == 0 {
		return summary, nil
	}

	accountIDs, err := p.ensureAccounts(ctx, investor.ID, accountNumbers)
	if err != nil {
		return summary, err
	}

	var rows []domain.Transaction
	for _, pt := range pending {
		var pairID *int64
		if pt.src.SourceIDTransaction != nil {
			if id, ok := pairIDsByCode[externalCode(*pt.src.SourceIDTransaction)]; ok {
				pairID = &id
			}
			// unresolved pairs stay nil; the second pass links them
		}
		accountID, ok := accountIDs[pt.fund.ID]
		if !ok {
			summary.Add(skippedUnresolvedLink("transaction %d: account for fund %d not found",
				pt.src.IDTransaction, pt.fund.ID))
			continue
		}

		tx, result := buildTransaction(pt.src, investor.ID, pt.fund.ID, accountID, pairID)
		if result.Outcome != OutcomeImported {
			p.Log.Debug().Int64("transaction", pt.src.IDTransaction).Str("reason", result.Detail).
				Msg("skipping transaction")
			summary.Add(result)
			continue
		}
		rows = append(rows, *tx)
	}

	if len(rows) > 0 {
		if err := p.URS.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error; err != nil {
			return summary, err
		}
		summary.Imported += len(rows)
	}
	return summary, nil
}

// ensureAccounts lazily creates the missing (investor, fund) accounts and
// returns fund id -> account id. Creation races between workers are settled
// by the unique constraint; the map is read back afterwards.
func (p *Pipeline) ensureAccounts(ctx context.Context, investorID uuid.UUID, accountNumbers map[int64]*string) (map[int64]int64, error) {
	var existing []domain.InvestorAccount
	if err := p.URS.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Find(&existing).Error; err != nil {
		return nil, err
	}
	out := map[int64]int64{}
	for _, acc := range existing {
		out[acc.FundID] = acc.ID
	}

	var missing []domain.InvestorAccount
	for fundID, number := range accountNumbers {
		if _, ok := out[fundID]; ok {
			continue
		}
		missing = append(missing, domain.InvestorAccount{
			InvestorID:    investorID,
			FundID:        fundID,
			AccountNumber: number,
		})
	}
	if len(missing) > 0 {
		if err := p.URS.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&missing).Error; err != nil {
			return nil, err
		}
		// Re-read to pick up ids, including rows created by a concurrent worker.
		if err := p.URS.WithContext(ctx).
			Where("investor_id = ?", investorID).
			Find(&existing).Error; err != nil {
			return nil, err
		}
		for _, acc := range existing {
			out[acc.FundID] = acc.ID
		}
	}
	return out, nil
}

func (p *Pipeline) fundsByExternalCodes(ctx context.Context, codes []string) (map[string]*domain.Fund, error) {
	out := map[string]*domain.Fund{}
	if len(codes) == 0 {
		return out, nil
	}
	var funds []domain.Fund
	if err := p.URS.WithContext(ctx).
		Where("external_code IN ?", codes).
		Find(&funds).Error; err != nil {
		return nil, err
	}
	for i := range funds {
		out[funds[i].ExternalCode] = &funds[i]
	}
	return out, nil
}

func (p *Pipeline) transactionIDsByExternalCodes(ctx context.Context, codes []string) (map[string]int64, error) {
	out := map[string]int64{}
	if len(codes) == 0 {
		return out, nil
	}
	var txs []domain.Transaction
	if err := p.URS.WithContext(ctx).
		Select("id", "external_code").
		Where("external_code IN ?", codes).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	for _, tx := range txs {
		out[tx.ExternalCode] = tx.ID
	}
	return out, nil
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
