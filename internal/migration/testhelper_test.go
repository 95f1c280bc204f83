package migration

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// newTestPipeline wires a Pipeline onto two in-memory databases with all
// tables migrated. Connections are pinned to one per database so every query
// sees the same in-memory store, which also forces the concurrent steps down
// to serial execution.
func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	urs := openTestDB(t)
	require.NoError(t, urs.AutoMigrate(domain.Models()...))

	siarDB := openTestDB(t)
	require.NoError(t, siarDB.AutoMigrate(siar.Models()...))

	p := New(urs, siarDB, zerolog.Nop())
	p.Parallelism = 2
	p.AumWorkers = 2
	return p
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func sptr(s string) *string {
	return &s
}

func iptr(v int) *int {
	return &v
}

func i64ptr(v int64) *int64 {
	return &v
}

func bptr(v bool) *bool {
	return &v
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func tptr(s string) *time.Time {
	t := day(s)
	return &t
}

// seedCustomer inserts one SIAR customer with a sub account.
func seedCustomer(t *testing.T, p *Pipeline, id int64, name string) {
	t.Helper()
	require.NoError(t, p.SIAR.Create(&siar.Customer{
		IDCustomer:     id,
		FirstName:      sptr(name),
		Email:          sptr(name + "@example.com"),
		UnitHolderIDNo: sptr("UH-" + name),
		InvestorType:   sptr("INDIVIDU"),
	}).Error)
	require.NoError(t, p.SIAR.Create(&siar.SubAccount{
		IDSubAccount: id,
		IDCustomer:   id,
		NoAccount:    sptr("ACC-" + name),
	}).Error)
}

// seedProduct inserts one active SIAR product.
func seedProduct(t *testing.T, p *Pipeline, id int64, code, name string) {
	t.Helper()
	require.NoError(t, p.SIAR.Create(&siar.Product{
		IDProduct:         id,
		ProductCode:       code,
		ProductName:       name,
		IDStatus:          true,
		SubsMin:           dptr("100000"),
		SubSettle:         iptr(2),
		RedSettle:         iptr(7),
		AllowSubscription: true,
		AllowRedemption:   true,
		AllowSwitching:    true,
	}).Error)
}

// seedTransaction inserts one approved SIAR transaction on the customer's own
// sub account.
func seedTransaction(t *testing.T, p *Pipeline, id, customerID, productID int64, category, txDate, units, nav string) {
	t.Helper()
	seedTransactionPair(t, p, id, customerID, productID, category, txDate, units, nav, nil)
}

func seedTransactionPair(t *testing.T, p *Pipeline, id, customerID, productID int64, category, txDate, units, nav string, pairID *int64) {
	t.Helper()
	u := d(units)
	n := d(nav)
	amount := u.Mul(n)
	require.NoError(t, p.SIAR.Create(&siar.Transaction{
		IDTransaction:       id,
		IDCustomer:          customerID,
		IDProduct:           productID,
		IDSubAccount:        i64ptr(customerID),
		IDCategory:          category,
		IDStatus:            siar.StatusApproved,
		SourceIDTransaction: pairID,
		TransactionDate:     tptr(txDate),
		NAVDate:             tptr(txDate),
		NAVValue:            &n,
		Units:               &u,
		SettDate:            tptr(txDate),
		Amount:              &amount,
		NetAmount:           &amount,
	}).Error)
}

func seedNav(t *testing.T, p *Pipeline, id, productID int64, date, value string) {
	t.Helper()
	v := d(value)
	require.NoError(t, p.SIAR.Create(&siar.NAV{
		IDNav:        id,
		IDProduct:    i64ptr(productID),
		NAVDate:      tptr(date),
		Value:        &v,
		SysRecStatus: 1,
	}).Error)
}

// seedWorld builds the standard fixture: one customer with an agent, two
// funds, a subscription, a redemption and a switch pair, plus NAVs.
//
// Customer 10 on fund 1 (EQTY): SUB 100 units, RED 40 units, SWTOT 60 units.
// The SWTOT pairs with a SWTIN of 60 units into fund 2 (BOND).
func seedWorld(t *testing.T, p *Pipeline) {
	t.Helper()

	require.NoError(t, p.SIAR.Create(&siar.ReferenceGroup{IDReferenceGroup: 1, GroupName: "PaymentMethod"}).Error)
	require.NoError(t, p.SIAR.Create(&siar.ReferenceDetail{
		IDReferenceDetail: 1, IDReferenceGroup: 1, MainValue: "TRS", Display: "Transfer",
	}).Error)

	require.NoError(t, p.SIAR.Create(&siar.RefBank{
		IDBank: 1, BankName: "Bank Mandala", BIMemberCode: sptr("008"),
		Branches: []siar.RefBankBranch{{IDBankBranch: 1, BranchName: "Jakarta Pusat"}},
	}).Error)

	require.NoError(t, p.SIAR.Create(&siar.AgentLevel{IDAgentLevel: 1, AgentLevelName: "branch", CodeLength: 2}).Error)
	require.NoError(t, p.SIAR.Create(&siar.Agent{
		AgentID: 5, NameAgent: sptr("Head Office"), AgentLevelID: i64ptr(1), IDStatus: "ACTIVE",
	}).Error)

	seedCustomer(t, p, 10, "Andi")
	require.NoError(t, p.SIAR.Create(&siar.AgentCustomer{
		IDAgentCustomer: 1, AgentID: 5, CustomerID: 10, EffDate: tptr("2023-01-01"),
	}).Error)

	seedProduct(t, p, 1, "EQTY", "Equity Growth Fund")
	seedProduct(t, p, 2, "BOND", "Fixed Income Fund")

	seedTransaction(t, p, 100, 10, 1, siar.CategorySubscription, "2023-02-01", "100", "1000")
	seedTransaction(t, p, 101, 10, 1, siar.CategoryRedemption, "2023-03-01", "40", "1100")
	seedTransaction(t, p, 102, 10, 1, siar.CategorySwitchOut, "2023-04-01", "60", "1200")
	seedTransactionPair(t, p, 103, 10, 2, siar.CategorySwitchIn, "2023-04-01", "60", "1200", i64ptr(102))

	seedNav(t, p, 1, 1, "2023-02-01", "1000")
	seedNav(t, p, 2, 1, "2023-03-01", "1100")
	seedNav(t, p, 3, 1, "2023-04-01", "1200")
	seedNav(t, p, 4, 2, "2023-04-01", "1200")
}
