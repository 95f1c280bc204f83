package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AumInvestorDaily is one investor's position in one fund valued at one NAV
// date, with the management fee accrued since the previous NAV date.
type AumInvestorDaily struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvestorID    uuid.UUID       `gorm:"column:investor_id;type:uuid;uniqueIndex:idx_aum_investor_daily_key;not null" json:"investor_id"`
	AgentID       int64           `gorm:"column:agent_id;not null" json:"agent_id"`
	FundID        int64           `gorm:"column:fund_id;uniqueIndex:idx_aum_investor_daily_key;not null" json:"fund_id"`
	Date          time.Time       `gorm:"column:date;uniqueIndex:idx_aum_investor_daily_key;not null" json:"date"`
	Units         decimal.Decimal `gorm:"column:units;type:decimal(30,8);not null" json:"units"`
	NavPerUnit    decimal.Decimal `gorm:"column:nav_per_unit;type:decimal(30,8);not null" json:"nav_per_unit"`
	AumValue      decimal.Decimal `gorm:"column:aum_value;type:decimal(30,8);not null" json:"aum_value"`
	Days          int             `gorm:"column:days;not null;default:1" json:"days"`
	ManagementFee decimal.Decimal `gorm:"column:management_fee;type:decimal(30,8);not null" json:"management_fee"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (AumInvestorDaily) TableName() string {
	return "aum_investor_daily"
}

// AumDaily is the per-date total of AumInvestorDaily, recomputed (upserted)
// whenever its date is processed.
type AumDaily struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date          time.Time       `gorm:"column:date;uniqueIndex;not null" json:"date"`
	AumValue      decimal.Decimal `gorm:"column:aum_value;type:decimal(30,8);not null" json:"aum_value"`
	ManagementFee decimal.Decimal `gorm:"column:management_fee;type:decimal(30,8);not null" json:"management_fee"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (AumDaily) TableName() string {
	return "aum_daily"
}
