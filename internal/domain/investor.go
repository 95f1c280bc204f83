package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Investor is the URS identity record. ExternalCode ("SIAR-<IDCustomer>") is
// the idempotency key against the legacy system.
type Investor struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName      string    `gorm:"column:first_name;not null" json:"first_name"`
	MiddleName     *string   `gorm:"column:middle_name" json:"middle_name"`
	LastName       *string   `gorm:"column:last_name" json:"last_name"`
	Email          *string   `gorm:"column:email" json:"email"`
	PhoneNumber    *string   `gorm:"column:phone_number" json:"phone_number"`
	Sid            *string   `gorm:"column:sid" json:"sid"`
	InvestorTypeID *string   `gorm:"column:investor_type_id" json:"investor_type_id"`
	ExternalCode   string    `gorm:"column:external_code;uniqueIndex" json:"external_code"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Investor) TableName() string {
	return "investors"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (i *Investor) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
