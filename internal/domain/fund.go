package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund is an investment product. ManagementFeeRate and ValuationBasis are
// written by the management-fee step; everything else is immutable once
// transactions reference the fund.
type Fund struct {
	ID             int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string  `gorm:"column:name;not null" json:"name"`
	Code           string  `gorm:"column:code;uniqueIndex" json:"code"`
	ExternalCode   string  `gorm:"column:external_code;uniqueIndex" json:"external_code"`
	FundCategoryID *string `gorm:"column:fund_category_id" json:"fund_category_id"`

	ManagementFeeRate decimal.Decimal `gorm:"column:management_fee_rate;type:decimal(18,8);not null;default:0" json:"management_fee_rate"`
	ValuationBasis    int             `gorm:"column:valuation_basis;not null;default:365" json:"valuation_basis"`

	MinSub   decimal.Decimal `gorm:"column:min_sub;type:decimal(30,8);not null;default:0" json:"min_sub"`
	MinRed   decimal.Decimal `gorm:"column:min_red;type:decimal(30,8);not null;default:0" json:"min_red"`
	MinSwin  decimal.Decimal `gorm:"column:min_swin;type:decimal(30,8);not null;default:0" json:"min_swin"`
	MinSwout decimal.Decimal `gorm:"column:min_swout;type:decimal(30,8);not null;default:0" json:"min_swout"`

	SubSettlementDays       *int `gorm:"column:sub_settlement_days" json:"sub_settlement_days"`
	RedSettlementDays       *int `gorm:"column:red_settlement_days" json:"red_settlement_days"`
	SwitchingSettlementDays *int `gorm:"column:switching_settlement_days" json:"switching_settlement_days"`

	StartDate *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`

	IsActive  bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsSyaria  bool `gorm:"column:is_syaria;not null;default:false" json:"is_syaria"`
	CanSub    bool `gorm:"column:can_subscript;not null;default:true" json:"can_subscript"`
	CanRedeem bool `gorm:"column:can_redeem;not null;default:true" json:"can_redeem"`
	CanSwitch bool `gorm:"column:can_switch;not null;default:true" json:"can_switch"`

	Version   int       `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Fund) TableName() string {
	return "funds"
}
