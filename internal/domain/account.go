package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvestorAccount is the (investor, fund) subscription relationship, created
// lazily the first time a transaction references the pair. Never updated
// after creation.
type InvestorAccount struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InvestorID    uuid.UUID `gorm:"column:investor_id;type:uuid;uniqueIndex:idx_investor_accounts_pair;not null" json:"investor_id"`
	FundID        int64     `gorm:"column:fund_id;uniqueIndex:idx_investor_accounts_pair;not null" json:"fund_id"`
	AccountNumber *string   `gorm:"column:account_number" json:"account_number"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (InvestorAccount) TableName() string {
	return "investor_accounts"
}
