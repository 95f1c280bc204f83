package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FundNav is an immutable per-(fund, date) NAV snapshot. One row per pair;
// duplicates are skipped at insert time by the unique index.
type FundNav struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FundID          int64           `gorm:"column:fund_id;uniqueIndex:idx_fund_navs_fund_date;not null" json:"fund_id"`
	Date            datatypes.Date  `gorm:"column:date;uniqueIndex:idx_fund_navs_fund_date;not null" json:"date"`
	Nav             decimal.Decimal `gorm:"column:nav;type:decimal(30,8);not null;default:0" json:"nav"`
	NavPerUnit      decimal.Decimal `gorm:"column:nav_per_unit;type:decimal(30,8);not null;default:0" json:"nav_per_unit"`
	OutstandingUnit decimal.Decimal `gorm:"column:outstanding_unit;type:decimal(30,8);not null;default:0" json:"outstanding_unit"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (FundNav) TableName() string {
	return "fund_navs"
}
