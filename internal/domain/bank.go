package domain

import "time"

type Bank struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"column:code;uniqueIndex" json:"code"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	BiCode    *string   `gorm:"column:bi_code" json:"bi_code"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Bank) TableName() string {
	return "banks"
}

type BankBranch struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"column:code;uniqueIndex" json:"code"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	BankID    int64     `gorm:"column:bank_id;not null" json:"bank_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Table name kept as-is from the URS schema.
func (BankBranch) TableName() string {
	return "bank_branchs"
}
