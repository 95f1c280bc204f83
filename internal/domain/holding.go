package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestorHolding is the append-only running unit-balance ledger: exactly one
// row per transaction, derived by the holdings step and never re-derived in
// place.
type InvestorHolding struct {
	ID                int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvestorID        uuid.UUID       `gorm:"column:investor_id;type:uuid;not null;index" json:"investor_id"`
	InvestorAccountID int64           `gorm:"column:investor_account_id;not null;index" json:"investor_account_id"`
	TransactionID     int64           `gorm:"column:transaction_id;uniqueIndex;not null" json:"transaction_id"`
	FundID            int64           `gorm:"column:fund_id;not null;index" json:"fund_id"`
	UnitsBefore       decimal.Decimal `gorm:"column:units_before;type:decimal(30,8);not null" json:"units_before"`
	UnitsAfter        decimal.Decimal `gorm:"column:units_after;type:decimal(30,8);not null" json:"units_after"`
	DeltaUnits        decimal.Decimal `gorm:"column:delta_units;type:decimal(30,8);not null" json:"delta_units"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (InvestorHolding) TableName() string {
	return "investor_holdings"
}
