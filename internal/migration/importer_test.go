package migration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// TestClassifyCategory folds adjustments into subscription/redemption and
// rejects everything else.
func TestClassifyCategory(t *testing.T) {
	for _, tc := range []struct {
		category string
		want     domain.TransactionType
		ok       bool
	}{
		{"SUB", domain.TxSubscription, true},
		{"ADJUP", domain.TxSubscription, true},
		{"RED", domain.TxRedemption, true},
		{"ADJDN", domain.TxRedemption, true},
		{"SWTIN", domain.TxSwitchingIn, true},
		{"SWTOT", domain.TxSwitchingOut, true},
		{"CASHD", "", false},
		{"DIV", "", false},
		{"", "", false},
	} {
		got, ok := classifyCategory(tc.category)
		assert.Equal(t, tc.ok, ok, tc.category)
		assert.Equal(t, tc.want, got, tc.category)
	}
}

func validSourceTransaction() *siar.Transaction {
	u := d("100")
	n := d("1000")
	amount := u.Mul(n)
	return &siar.Transaction{
		IDTransaction:   42,
		IDCustomer:      10,
		IDProduct:       1,
		IDSubAccount:    i64ptr(10),
		IDCategory:      siar.CategorySubscription,
		IDStatus:        siar.StatusApproved,
		TransactionDate: tptr("2023-02-01"),
		NAVDate:         tptr("2023-02-01"),
		NAVValue:        &n,
		Units:           &u,
		SettDate:        tptr("2023-02-03"),
		Amount:          &amount,
		SubAccount:      &siar.SubAccount{IDSubAccount: 10, IDCustomer: 10, NoAccount: sptr("ACC-1")},
	}
}

// TestBuildTransaction maps a valid source row field by field.
func TestBuildTransaction(t *testing.T) {
	src := validSourceTransaction()
	investorID := uuid.New()

	tx, result := buildTransaction(src, investorID, 7, 3, nil)
	require.Equal(t, OutcomeImported, result.Outcome)
	require.NotNil(t, tx)

	assert.Equal(t, "SIAR-42", tx.ExternalCode)
	assert.Equal(t, domain.TxSubscription, tx.TransactionType)
	assert.Equal(t, investorID, tx.InvestorID)
	assert.Equal(t, int64(7), tx.FundID)
	assert.Equal(t, int64(3), tx.InvestorAccountID)
	assert.Equal(t, int64(1), tx.AgentID)
	assert.Equal(t, "TRS", tx.PaymentMethodID)
	assert.True(t, tx.Units.Equal(d("100")))
	assert.True(t, tx.NavPerUnit.Equal(d("1000")))
	assert.True(t, tx.Amount.Equal(d("100000")))
	assert.True(t, tx.Fee.IsZero())
	assert.Nil(t, tx.SourceTransactionID)
}

// TestBuildTransactionPaymentMethod keeps an explicit source payment method.
func TestBuildTransactionPaymentMethod(t *testing.T) {
	src := validSourceTransaction()
	src.PaymentMethod = sptr("AUTO")

	tx, result := buildTransaction(src, uuid.New(), 1, 1, nil)
	require.Equal(t, OutcomeImported, result.Outcome)
	assert.Equal(t, "AUTO", tx.PaymentMethodID)
}

// TestBuildTransactionSkips covers every validation that rejects a row.
func TestBuildTransactionSkips(t *testing.T) {
	for name, mutate := range map[string]func(*siar.Transaction){
		"missing sub account":      func(s *siar.Transaction) { s.SubAccount = nil },
		"unknown category":         func(s *siar.Transaction) { s.IDCategory = "DIV" },
		"cash category":            func(s *siar.Transaction) { s.IDCategory = siar.CategoryCash },
		"missing transaction date": func(s *siar.Transaction) { s.TransactionDate = nil },
		"missing nav date":         func(s *siar.Transaction) { s.NAVDate = nil },
		"missing nav value":        func(s *siar.Transaction) { s.NAVValue = nil },
		"missing units":            func(s *siar.Transaction) { s.Units = nil },
		"missing settlement date":  func(s *siar.Transaction) { s.SettDate = nil },
	} {
		t.Run(name, func(t *testing.T) {
			src := validSourceTransaction()
			mutate(src)

			tx, result := buildTransaction(src, uuid.New(), 1, 1, nil)
			assert.Nil(t, tx)
			assert.Equal(t, OutcomeSkippedMissingField, result.Outcome)
			assert.NotEmpty(t, result.Detail)
		})
	}
}

// TestTransactionTypeSign: inflows are +1, outflows -1.
func TestTransactionTypeSign(t *testing.T) {
	assert.Equal(t, 1, domain.TxSubscription.Sign())
	assert.Equal(t, 1, domain.TxSwitchingIn.Sign())
	assert.Equal(t, -1, domain.TxRedemption.Sign())
	assert.Equal(t, -1, domain.TxSwitchingOut.Sign())
}

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, nilIfBlank(nil))
	assert.Nil(t, nilIfBlank(sptr("   ")))
	got := nilIfBlank(sptr("  REF-1 "))
	require.NotNil(t, got)
	assert.Equal(t, "REF-1", *got)
}
