package migration

import (
	"context"
	"fmt"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// backfillSwitchLinks is the second pass: for every SWITCHING_IN source
// transaction with a recorded pair, set source_transaction_id on the target
// row if it is still null and the paired SWITCHING_OUT row now exists. Pair
// ordering in the source is not guaranteed, so the OUT leg may have been
// imported after the IN leg. Rows whose pair was never imported stay null.
func (p *Pipeline) backfillSwitchLinks(ctx context.Context) error {
	totalUpdated := 0
	offset := 0
	for {
		var switchIns []siar.Transaction
		err := p.SIAR.WithContext(ctx).
			Select(`"IDTransaction"`, `"SourceIDTransaction"`).
			Where(`"IDStatus" = ? AND "IDCategory" = ? AND "SourceIDTransaction" IS NOT NULL`,
				siar.StatusApproved, siar.CategorySwitchIn).
			Order(`"IDTransaction" asc`).
			Offset(offset).
			Limit(p.PageSize).
			Find(&switchIns).Error
		if err != nil {
			return fmt.Errorf("page switch-ins: %w", err)
		}
		if len(switchIns) == 0 {
			break
		}

		inCodes := make([]string, 0, len(switchIns))
		pairCodes := make([]string, 0, len(switchIns))
		for _, tx := range switchIns {
			inCodes = append(inCodes, externalCode(tx.IDTransaction))
			if tx.SourceIDTransaction != nil {
				pairCodes = append(pairCodes, externalCode(*tx.SourceIDTransaction))
			}
		}

		// Only rows still lacking the link are candidates.
		var unlinked []domain.Transaction
		if err := p.URS.WithContext(ctx).
			Select("id", "external_code").
			Where("external_code IN ? AND source_transaction_id IS NULL", inCodes).
			Find(&unlinked).Error; err != nil {
			return err
		}
		unlinkedByCode := map[string]int64{}
		for _, tx := range unlinked {
			unlinkedByCode[tx.ExternalCode] = tx.ID
		}

		pairIDsByCode, err := p.transactionIDsByExternalCodes(ctx, pairCodes)
		if err != nil {
			return err
		}

		updated := 0
		for _, src := range switchIns {
			targetID, ok := unlinkedByCode[externalCode(src.IDTransaction)]
			if !ok || src.SourceIDTransaction == nil {
				continue
			}
			pairID, ok := pairIDsByCode[externalCode(*src.SourceIDTransaction)]
			if !ok {
				continue
			}
			if err := p.URS.WithContext(ctx).
				Model(&domain.Transaction{}).
				Where("id = ?", targetID).
				Update("source_transaction_id", pairID).Error; err != nil {
				return err
			}
			updated++
		}

		totalUpdated += updated
		if updated > 0 {
			p.Log.Info().Int("updated", updated).Int("total", totalUpdated).
				Msg("linked switch pairs")
		}
		offset += p.PageSize
	}

	p.Log.Info().Int("updated", totalUpdated).Msg("completed switch pair backfill")
	return nil
}
