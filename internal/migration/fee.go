package migration

import (
	"context"
	"fmt"
	"time"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

const managementFeeType = "MGT"

// ImportManagementFees resolves, per fund, the most recently effective
// management fee rule (effective date at or before today) and writes the fee
// percentage and day-count convention onto the Fund row. When a rule carries
// multiple positions, the lowest explicit FeePos wins. Funds that cannot be
// resolved by product code or derived external code are skipped and counted.
func (p *Pipeline) ImportManagementFees(ctx context.Context) error {
	today := time.Now()

	// Latest effective MGT fee link per product. Ordered so the first row
	// seen per product is the winner.
	var links []siar.ProductFeeByDate
	err := p.SIAR.WithContext(ctx).
		Where(`"Type" = ? AND "IsActive" = ? AND "sysRecStatus" = 1 AND "EffectiveDate" <= ?`,
			managementFeeType, true, today).
		Order(`"IDProduct" asc, "EffectiveDate" desc`).
		Find(&links).Error
	if err != nil {
		return fmt.Errorf("fee links: %w", err)
	}
	linkByProduct := map[int64]siar.ProductFeeByDate{}
	var feeIDs []int64
	for _, link := range links {
		if _, seen := linkByProduct[link.IDProduct]; seen {
			continue
		}
		linkByProduct[link.IDProduct] = link
		feeIDs = append(feeIDs, link.FeeID)
	}
	p.Log.Info().Int("products", len(linkByProduct)).Msg("resolved effective fee links")
	if len(linkByProduct) == 0 {
		return nil
	}

	feesByID := map[int64]siar.SharingFee{}
	var fees []siar.SharingFee
	if err := p.SIAR.WithContext(ctx).Where(`"FeeID" IN ?`, feeIDs).Find(&fees).Error; err != nil {
		return fmt.Errorf("sharing fees: %w", err)
	}
	for _, fee := range fees {
		feesByID[fee.FeeID] = fee
	}

	// Lowest explicit FeePos per fee; a NULL position loses to any explicit one.
	ruleByFeeID := map[int64]siar.SharingFeeRule{}
	var rules []siar.SharingFeeRule
	if err := p.SIAR.WithContext(ctx).Where(`"FeeID" IN ?`, feeIDs).Find(&rules).Error; err != nil {
		return fmt.Errorf("fee rules: %w", err)
	}
	for _, rule := range rules {
		existing, seen := ruleByFeeID[rule.FeeID]
		if !seen {
			ruleByFeeID[rule.FeeID] = rule
			continue
		}
		if rule.FeePos != nil && (existing.FeePos == nil || *rule.FeePos < *existing.FeePos) {
			ruleByFeeID[rule.FeeID] = rule
		}
	}

	productIDs := make([]int64, 0, len(linkByProduct))
	for id := range linkByProduct {
		productIDs = append(productIDs, id)
	}
	var products []siar.Product
	if err := p.SIAR.WithContext(ctx).Where(`"IDProduct" IN ?`, productIDs).Find(&products).Error; err != nil {
		return fmt.Errorf("products: %w", err)
	}
	productByID := map[int64]siar.Product{}
	for _, product := range products {
		productByID[product.IDProduct] = product
	}

	var funds []domain.Fund
	err = p.URS.WithContext(ctx).
		Where("external_code LIKE ?", "SIAR-%").
		Find(&funds).Error
	if err != nil {
		return fmt.Errorf("funds: %w", err)
	}
	fundByCode := map[string]*domain.Fund{}
	fundBySiarID := map[string]*domain.Fund{}
	for i := range funds {
		fundByCode[funds[i].Code] = &funds[i]
		if id, ok := siarID(funds[i].ExternalCode); ok {
			fundBySiarID[id] = &funds[i]
		}
	}

	updated, skipped := 0, 0
	for productID, link := range linkByProduct {
		product, ok := productByID[productID]
		if !ok {
			skipped++
			continue
		}

		fund := fundByCode[product.ProductCode]
		if fund == nil {
			fund = fundBySiarID[formatInt(productID)]
		}
		if fund == nil {
			p.Log.Warn().Str("product_code", product.ProductCode).Str("product", product.ProductName).
				Msg("skipping fee: fund not found")
			skipped++
			continue
		}

		rule, hasRule := ruleByFeeID[link.FeeID]
		rate := decimalOrZero(nil)
		if hasRule {
			rate = decimalOrZero(rule.FeeAmount)
			if rule.FeeAmountCode != nil && *rule.FeeAmountCode != "PC" {
				p.Log.Warn().Str("product_code", product.ProductCode).
					Str("fee_amount_code", *rule.FeeAmountCode).
					Msg("fee amount code is not a percentage")
			}
		}

		basis := 365
		if fee, ok := feesByID[link.FeeID]; ok && fee.FeeDays != nil {
			basis = *fee.FeeDays
		}

		err := p.URS.WithContext(ctx).
			Model(&domain.Fund{}).
			Where("id = ?", fund.ID).
			Updates(map[string]any{
				"management_fee_rate": rate,
				"valuation_basis":     basis,
			}).Error
		if err != nil {
			p.Log.Error().Err(err).Str("fund", fund.Code).Msg("failed to update fund fee")
			skipped++
			continue
		}
		p.Log.Debug().Str("fund", fund.Code).Str("rate", rate.String()).Int("valuation_basis", basis).
			Msg("updated fund management fee")
		updated++
	}

	p.Log.Info().Int("updated", updated).Int("skipped", skipped).
		Msg("completed importing management fee rates")
	return nil
}
