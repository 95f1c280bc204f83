package domain

import "time"

// Reference is a low-cardinality lookup row keyed by (reference_name, code).
type Reference struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReferenceName string    `gorm:"column:reference_name;uniqueIndex:idx_references_name_code;not null" json:"reference_name"`
	Code          string    `gorm:"column:code;uniqueIndex:idx_references_name_code;not null" json:"code"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Reference) TableName() string {
	return "references"
}
