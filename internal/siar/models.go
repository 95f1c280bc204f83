// Package siar maps the legacy SIAR registry schema. The pipeline only ever
// reads from these tables.
package siar

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusApproved and CategoryCash define the transaction eligibility filter:
// only approved, non-cash movements are migrated.
const (
	StatusApproved = "APPROVED"
	CategoryCash   = "CASHD"
)

// Source category codes.
const (
	CategorySubscription = "SUB"
	CategoryAdjustUp     = "ADJUP"
	CategoryRedemption   = "RED"
	CategoryAdjustDown   = "ADJDN"
	CategorySwitchIn     = "SWTIN"
	CategorySwitchOut    = "SWTOT"
)

type Customer struct {
	IDCustomer     int64   `gorm:"column:IDCustomer;primaryKey"`
	FirstName      *string `gorm:"column:FirstName"`
	MiddleName     *string `gorm:"column:MiddleName"`
	LastName       *string `gorm:"column:LastName"`
	Email          *string `gorm:"column:Email"`
	MobilePhone    *string `gorm:"column:MobilePhone"`
	UnitHolderIDNo *string `gorm:"column:UnitHolderIDNo"`
	InvestorType   *string `gorm:"column:InvestorType"`

	AgentCustomers []AgentCustomer `gorm:"foreignKey:CustomerID;references:IDCustomer"`
}

func (Customer) TableName() string {
	return "TCustomer"
}

type AgentCustomer struct {
	IDAgentCustomer int64      `gorm:"column:IDAgentCustomer;primaryKey"`
	AgentID         int64      `gorm:"column:AgentId"`
	CustomerID      int64      `gorm:"column:IDCustomer"`
	EffDate         *time.Time `gorm:"column:EffDate"`
}

func (AgentCustomer) TableName() string {
	return "TAgentCustomer"
}

type Agent struct {
	AgentID      int64   `gorm:"column:AgentID;primaryKey"`
	NameAgent    *string `gorm:"column:NameAgent"`
	AgentLevelID *int64  `gorm:"column:AgentLevelID"`
	IDStatus     string  `gorm:"column:IDStatus"`
}

func (Agent) TableName() string {
	return "TAgent"
}

type AgentLevel struct {
	IDAgentLevel   int64  `gorm:"column:IDAgentLevel;primaryKey"`
	AgentLevelName string `gorm:"column:AgentLevelName"`
	CodeLength     int    `gorm:"column:CodeLength"`
}

func (AgentLevel) TableName() string {
	return "TAgentLevel"
}

type RefBank struct {
	IDBank       int64   `gorm:"column:IDBank;primaryKey"`
	BankName     string  `gorm:"column:BankName"`
	BIMemberCode *string `gorm:"column:BIMemberCode"`

	Branches []RefBankBranch `gorm:"foreignKey:BankID;references:IDBank"`
}

func (RefBank) TableName() string {
	return "TRefBank"
}

type RefBankBranch struct {
	IDBankBranch int64  `gorm:"column:IDBankBranch;primaryKey"`
	BankID       int64  `gorm:"column:IDBank"`
	BranchName   string `gorm:"column:BranchName"`
}

func (RefBankBranch) TableName() string {
	return "TRefBankBranch"
}

type ReferenceGroup struct {
	IDReferenceGroup int64  `gorm:"column:IDReferenceGroup;primaryKey"`
	GroupName        string `gorm:"column:GroupName"`
}

func (ReferenceGroup) TableName() string {
	return "TReferenceGroup"
}

type ReferenceDetail struct {
	IDReferenceDetail int64  `gorm:"column:IDReferenceDetail;primaryKey"`
	IDReferenceGroup  int64  `gorm:"column:IDReferenceGroup"`
	MainValue         string `gorm:"column:MainValue"`
	Display           string `gorm:"column:Display"`

	Group ReferenceGroup `gorm:"foreignKey:IDReferenceGroup;references:IDReferenceGroup"`
}

func (ReferenceDetail) TableName() string {
	return "TReferenceDetail"
}

type Product struct {
	IDProduct                 int64            `gorm:"column:IDProduct;primaryKey"`
	ProductCode               string           `gorm:"column:ProductCode"`
	ProductName               string           `gorm:"column:ProductName"`
	IDCategory                *string          `gorm:"column:IDCategory"`
	IDStatus                  bool             `gorm:"column:IDStatus"`
	IsSharia                  *bool            `gorm:"column:IsSharia"`
	SubsMin                   *decimal.Decimal `gorm:"column:SubsMin;type:decimal(30,8)"`
	RedMinAmount              *decimal.Decimal `gorm:"column:RedMinAmount;type:decimal(30,8)"`
	MinUnitSwitching          *decimal.Decimal `gorm:"column:MinUnitSwitching;type:decimal(30,8)"`
	MinBalanceAfterRedemption *decimal.Decimal `gorm:"column:MinBalanceAfterRedemption;type:decimal(30,8)"`
	MinBalanceAfterSwitching  *decimal.Decimal `gorm:"column:MinBalanceAfterSwitching;type:decimal(30,8)"`
	SubSettle                 *int             `gorm:"column:SubSettle"`
	RedSettle                 *int             `gorm:"column:RedSettle"`
	SwtSettle                 *int             `gorm:"column:SwtSettle"`
	InitialUnit               *decimal.Decimal `gorm:"column:InitialUnit;type:decimal(30,8)"`
	ManagementFee             *decimal.Decimal `gorm:"column:ManagementFee;type:decimal(18,8)"`
	StartDate                 *time.Time       `gorm:"column:StartDate"`
	EndDate                   *time.Time       `gorm:"column:EndDate"`
	AllowSubscription         bool             `gorm:"column:AllowSubscription"`
	AllowRedemption           bool             `gorm:"column:AllowRedemption"`
	AllowSwitching            bool             `gorm:"column:AllowSwitching"`
}

func (Product) TableName() string {
	return "TProduct"
}

type SubAccount struct {
	IDSubAccount int64   `gorm:"column:IDSubAccount;primaryKey"`
	IDCustomer   int64   `gorm:"column:IDCustomer"`
	NoAccount    *string `gorm:"column:NoAccount"`
}

func (SubAccount) TableName() string {
	return "TSubAccount"
}

type Transaction struct {
	IDTransaction       int64            `gorm:"column:IDTransaction;primaryKey"`
	IDCustomer          int64            `gorm:"column:IDCustomer"`
	IDProduct           int64            `gorm:"column:IDProduct"`
	IDSubAccount        *int64           `gorm:"column:IDSubAccount"`
	IDCategory          string           `gorm:"column:IDCategory"`
	IDStatus            string           `gorm:"column:IDStatus"`
	SourceIDTransaction *int64           `gorm:"column:SourceIDTransaction"`
	ReferenceNo         *string          `gorm:"column:ReferenceNo"`
	TransactionDate     *time.Time       `gorm:"column:TransactionDate"`
	NAVDate             *time.Time       `gorm:"column:NAVDate"`
	NAVValue            *decimal.Decimal `gorm:"column:NAVValue;type:decimal(30,8)"`
	Units               *decimal.Decimal `gorm:"column:Units;type:decimal(30,8)"`
	SettDate            *time.Time       `gorm:"column:SettDate"`
	Amount              *decimal.Decimal `gorm:"column:Amount;type:decimal(30,8)"`
	NetAmount           *decimal.Decimal `gorm:"column:NetAmount;type:decimal(30,8)"`
	Fee                 *decimal.Decimal `gorm:"column:Fee;type:decimal(30,8)"`
	IsRedemAll          *bool            `gorm:"column:IsRedemAll"`
	PaymentMethod       *string          `gorm:"column:PaymentMethod"`

	SubAccount *SubAccount `gorm:"foreignKey:IDSubAccount;references:IDSubAccount"`
}

func (Transaction) TableName() string {
	return "TTransaction"
}

type NAV struct {
	IDNav           int64            `gorm:"column:IDNav;primaryKey"`
	IDProduct       *int64           `gorm:"column:IDProduct"`
	NAVDate         *time.Time       `gorm:"column:NAVDate"`
	Value           *decimal.Decimal `gorm:"column:Value;type:decimal(30,8)"`
	TotalNetAsset   *decimal.Decimal `gorm:"column:TotalNetAsset;type:decimal(30,8)"`
	OutstandingUnit *decimal.Decimal `gorm:"column:OutstandingUnit;type:decimal(30,8)"`
	SysRecStatus    int              `gorm:"column:sysRecStatus"`
}

func (NAV) TableName() string {
	return "TNAV"
}

type ProductFeeByDate struct {
	IDProductFeeByDate int64     `gorm:"column:IDProductFeeByDate;primaryKey"`
	IDProduct          int64     `gorm:"column:IDProduct"`
	Type               string    `gorm:"column:Type"`
	FeeID              int64     `gorm:"column:FeeID"`
	EffectiveDate      time.Time `gorm:"column:EffectiveDate"`
	IsActive           bool      `gorm:"column:IsActive"`
	SysRecStatus       int       `gorm:"column:sysRecStatus"`
}

func (ProductFeeByDate) TableName() string {
	return "TProductFeeByDate"
}

type SharingFee struct {
	FeeID   int64   `gorm:"column:FeeID;primaryKey"`
	FeeName *string `gorm:"column:FeeName"`
	FeeDays *int    `gorm:"column:FeeDays"`
	FeeType *string `gorm:"column:FeeType"`
}

func (SharingFee) TableName() string {
	return "TSharingFee"
}

type SharingFeeRule struct {
	IDSharingFeeRule int64            `gorm:"column:IDSharingFeeRule;primaryKey"`
	FeeID            int64            `gorm:"column:FeeID"`
	FeePos           *int             `gorm:"column:FeePos"`
	FeeRangeBottom   *decimal.Decimal `gorm:"column:FeeRangeBottom;type:decimal(30,8)"`
	FeeRange         *decimal.Decimal `gorm:"column:FeeRange;type:decimal(30,8)"`
	FeeAmount        *decimal.Decimal `gorm:"column:FeeAmount;type:decimal(30,8)"`
	FeeAmountCode    *string          `gorm:"column:FeeAmountCode"`
	FeeSign          *string          `gorm:"column:FeeSign"`
}

func (SharingFeeRule) TableName() string {
	return "TSharingFeeRule"
}

// Models lists every SIAR model, used by tests to build a fixture source
// database.
func Models() []any {
	return []any{
		&ReferenceGroup{},
		&ReferenceDetail{},
		&RefBank{},
		&RefBankBranch{},
		&AgentLevel{},
		&Agent{},
		&Customer{},
		&AgentCustomer{},
		&Product{},
		&SubAccount{},
		&Transaction{},
		&NAV{},
		&ProductFeeByDate{},
		&SharingFee{},
		&SharingFeeRule{},
	}
}
