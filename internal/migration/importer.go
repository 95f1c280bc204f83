package migration

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// classifyCategory maps a SIAR category code to the URS transaction type.
// Manual adjustments are folded into subscription/redemption.
func classifyCategory(category string) (domain.TransactionType, bool) {
	switch category {
	case siar.CategorySubscription, siar.CategoryAdjustUp:
		return domain.TxSubscription, true
	case siar.CategoryRedemption, siar.CategoryAdjustDown:
		return domain.TxRedemption, true
	case siar.CategorySwitchIn:
		return domain.TxSwitchingIn, true
	case siar.CategorySwitchOut:
		return domain.TxSwitchingOut, true
	}
	return "", false
}

// buildTransaction validates one source row and maps it onto a target
// transaction. It is the single import primitive shared by the bulk importer
// and the missing-transaction reconciler; callers resolve investor, fund,
// account and the optional switch pair first, each with its own batching
// strategy. sourceTxID may be nil even when the source row names a pair: the
// link is then backfilled by the second pass once the pair exists.
func buildTransaction(
	src *siar.Transaction,
	investorID uuid.UUID,
	fundID int64,
	accountID int64,
	sourceTxID *int64,
) (*domain.Transaction, RecordResult) {
	if src.SubAccount == nil {
		return nil, skippedMissingField("transaction %d: missing sub account", src.IDTransaction)
	}

	txType, ok := classifyCategory(src.IDCategory)
	if !ok {
		return nil, skippedMissingField("transaction %d: unknown category %q", src.IDTransaction, src.IDCategory)
	}

	if src.TransactionDate == nil || src.NAVDate == nil || src.NAVValue == nil ||
		src.Units == nil || src.SettDate == nil {
		return nil, skippedMissingField("transaction %d: missing required fields", src.IDTransaction)
	}

	paymentMethod := "TRS"
	if src.PaymentMethod != nil && *src.PaymentMethod != "" {
		paymentMethod = *src.PaymentMethod
	}

	tx := &domain.Transaction{
		ExternalCode:      externalCode(src.IDTransaction),
		TransactionType:   txType,
		InvestorID:        investorID,
		InvestorAccountID: accountID,
		FundID:            fundID,
		AgentID:           1, // TODO: resolve the originating agent once SIAR exposes it per transaction
		ReferenceNo:       nilIfBlank(src.ReferenceNo),

		TransactionDate: *src.TransactionDate,
		NavDate:         *src.NAVDate,
		NavPerUnit:      *src.NAVValue,
		Units:           *src.Units,
		SettlementDate:  *src.SettDate,
		Amount:          decimalOrZero(src.Amount),
		NetAmount:       decimalOrZero(src.NetAmount),
		Fee:             decimalOrZero(src.Fee),

		IsRedeemAll:         src.IsRedemAll,
		SourceTransactionID: sourceTxID,
		PaymentMethodID:     paymentMethod,
	}
	return tx, imported()
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
