package migration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urs-migrator/internal/domain"
)

func setupAumWorld(t *testing.T, p *Pipeline) {
	t.Helper()
	seedWorld(t, p)
	ctx := context.Background()
	require.NoError(t, p.ImportReferences(ctx))
	require.NoError(t, p.ImportTransactions(ctx))
	require.NoError(t, p.MigrateNav(ctx))

	seedFee(t, p, 1, 1, 100, "2022-01-01", true, iptr(365))
	seedFeeRule(t, p, 1, 100, iptr(1), "2.00", "PC")
	require.NoError(t, p.ImportManagementFees(ctx))

	require.NoError(t, p.GenerateHoldings(ctx))
}

func assertDecimalClose(t *testing.T, want, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, want.Sub(got).Abs().LessThan(d("0.0001")),
		"%s: want %s got %s", msg, want, got)
}

// TestGenerateAum values open positions at each NAV date and accrues the fee
// over the gap since the fund's previous NAV date.
func TestGenerateAum(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.GenerateAum(ctx))

	var dailies []domain.AumDaily
	require.NoError(t, p.URS.Order("date asc").Find(&dailies).Error)
	require.Len(t, dailies, 3)

	// 2023-02-01: 100 units of fund 1 at 1000, first NAV date so 1 day.
	assertDecimalClose(t, d("100000"), dailies[0].AumValue, "aum 02-01")
	feb := d("100000").Mul(d("2")).Div(hundred).Div(d("365"))
	assertDecimalClose(t, feb, dailies[0].ManagementFee, "fee 02-01")

	// 2023-03-01: 60 units at 1100, 28 days since the previous NAV date.
	assertDecimalClose(t, d("66000"), dailies[1].AumValue, "aum 03-01")
	mar := d("66000").Mul(d("2")).Div(hundred).Div(d("365")).Mul(d("28"))
	assertDecimalClose(t, mar, dailies[1].ManagementFee, "fee 03-01")

	// 2023-04-01: fund 1 is fully switched out; only the 60 fund-2 units
	// remain, and fund 2 carries no fee.
	assertDecimalClose(t, d("72000"), dailies[2].AumValue, "aum 04-01")
	assert.True(t, dailies[2].ManagementFee.IsZero())

	var positions int64
	require.NoError(t, p.URS.Model(&domain.AumInvestorDaily{}).Count(&positions).Error)
	assert.Equal(t, int64(3), positions)
}

// TestGenerateAumClosedPositionsExcluded: a fully redeemed fund never shows
// up in the per-investor rows.
func TestGenerateAumClosedPositionsExcluded(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.GenerateAum(ctx))

	var fund1 domain.Fund
	require.NoError(t, p.URS.Where("code = ?", "EQTY").First(&fund1).Error)
	var count int64
	require.NoError(t, p.URS.Model(&domain.AumInvestorDaily{}).
		Where("fund_id = ? AND date = ?", fund1.ID, day("2023-04-01")).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestGenerateAumAgentAttribution stamps each row with the investor's agent.
func TestGenerateAumAgentAttribution(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.GenerateAum(ctx))

	var agent domain.Agent
	require.NoError(t, p.URS.Where("code = ?", "SIAR-5").First(&agent).Error)

	var rows []domain.AumInvestorDaily
	require.NoError(t, p.URS.Find(&rows).Error)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, agent.ID, row.AgentID)
	}
}

// TestGenerateAumSkipsProcessedDates: a re-run only rolls up NAV dates added
// since the previous run.
func TestGenerateAumSkipsProcessedDates(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.GenerateAum(ctx))

	var firstDailies []domain.AumDaily
	require.NoError(t, p.URS.Order("date asc").Find(&firstDailies).Error)
	require.Len(t, firstDailies, 3)

	seedNav(t, p, 10, 2, "2023-05-01", "1250")
	require.NoError(t, p.MigrateNav(ctx))
	require.NoError(t, p.GenerateAum(ctx))

	var dailies []domain.AumDaily
	require.NoError(t, p.URS.Order("date asc").Find(&dailies).Error)
	require.Len(t, dailies, 4)
	for i := range firstDailies {
		assert.Equal(t, firstDailies[i].ID, dailies[i].ID)
		assertDecimalClose(t, firstDailies[i].AumValue, dailies[i].AumValue, "aum unchanged")
	}

	// 60 fund-2 units at the new NAV.
	assertDecimalClose(t, d("75000"), dailies[3].AumValue, "aum 05-01")
}

// TestGenerateAumCoverageVerification: after a run every NAV date has a
// roll-up and nothing is left pending.
func TestGenerateAumCoverageVerification(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	pending, err := p.pendingAumDates(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	require.NoError(t, p.GenerateAum(ctx))

	pending, err = p.pendingAumDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// TestGenerateAumSkipsUnassignedInvestors: positions of an investor without
// an agent link produce no rows, and their dates stay pending.
func TestGenerateAumSkipsUnassignedInvestors(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.URS.Where("1 = 1").Delete(&domain.AgentInvestor{}).Error)

	require.NoError(t, p.GenerateAum(ctx))

	var positions, dailies int64
	require.NoError(t, p.URS.Model(&domain.AumInvestorDaily{}).Count(&positions).Error)
	require.NoError(t, p.URS.Model(&domain.AumDaily{}).Count(&dailies).Error)
	assert.Equal(t, int64(0), positions)
	assert.Equal(t, int64(0), dailies)

	pending, err := p.pendingAumDates(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

// TestGenerateAumNoop: nothing pending, nothing written.
func TestGenerateAumNoop(t *testing.T) {
	p := newTestPipeline(t)
	setupAumWorld(t, p)
	ctx := context.Background()

	require.NoError(t, p.GenerateAum(ctx))
	require.NoError(t, p.GenerateAum(ctx))

	var positions int64
	require.NoError(t, p.URS.Model(&domain.AumInvestorDaily{}).Count(&positions).Error)
	assert.Equal(t, int64(3), positions)
}
