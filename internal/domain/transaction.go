package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enumerates the four ledger movement kinds.
type TransactionType string

const (
	TxSubscription TransactionType = "SUBSCRIPTION"
	TxRedemption   TransactionType = "REDEMPTION"
	TxSwitchingIn  TransactionType = "SWITCHING_IN"
	TxSwitchingOut TransactionType = "SWITCHING_OUT"
)

// Sign is +1 for unit inflows and -1 for outflows.
func (t TransactionType) Sign() int {
	switch t {
	case TxSubscription, TxSwitchingIn:
		return 1
	case TxRedemption, TxSwitchingOut:
		return -1
	}
	return 0
}

// Transaction is an immutable ledger entry. The only permitted mutation is a
// one-time backfill of SourceTransactionID when the paired switch leg did not
// exist at import time.
type Transaction struct {
	ID                int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExternalCode      string          `gorm:"column:external_code;uniqueIndex" json:"external_code"`
	TransactionType   TransactionType `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	InvestorID        uuid.UUID       `gorm:"column:investor_id;type:uuid;not null;index" json:"investor_id"`
	InvestorAccountID int64           `gorm:"column:investor_account_id;not null;index" json:"investor_account_id"`
	FundID            int64           `gorm:"column:fund_id;not null;index" json:"fund_id"`
	AgentID           int64           `gorm:"column:agent_id;not null;default:1" json:"agent_id"`
	ReferenceNo       *string         `gorm:"column:reference_no" json:"reference_no"`

	TransactionDate time.Time       `gorm:"column:transaction_date;not null" json:"transaction_date"`
	NavDate         time.Time       `gorm:"column:nav_date;not null" json:"nav_date"`
	NavPerUnit      decimal.Decimal `gorm:"column:nav_per_unit;type:decimal(30,8);not null" json:"nav_per_unit"`
	Units           decimal.Decimal `gorm:"column:units;type:decimal(30,8);not null" json:"units"`
	SettlementDate  time.Time       `gorm:"column:settlement_date;not null" json:"settlement_date"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(30,8);not null;default:0" json:"amount"`
	NetAmount       decimal.Decimal `gorm:"column:net_amount;type:decimal(30,8);not null;default:0" json:"net_amount"`
	Fee             decimal.Decimal `gorm:"column:fee;type:decimal(30,8);not null;default:0" json:"fee"`

	IsRedeemAll         *bool  `gorm:"column:is_redeem_all" json:"is_redeem_all"`
	SourceTransactionID *int64 `gorm:"column:source_transaction_id" json:"source_transaction_id"`
	PaymentMethodID     string `gorm:"column:payment_method_id;not null;default:'TRS'" json:"payment_method_id"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
