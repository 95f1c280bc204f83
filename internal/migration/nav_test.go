package migration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urs-migrator/internal/domain"
	"urs-migrator/internal/siar"
)

// TestMigrateNav imports every eligible source NAV keyed by (fund, date).
func TestMigrateNav(t *testing.T) {
	p := newTestPipeline(t)
	seedWorld(t, p)
	ctx := context.Background()
	require.NoError(t, p.ImportReferences(ctx))

	require.NoError(t, p.MigrateNav(ctx))

	var count int64
	require.NoError(t, p.URS.Model(&domain.FundNav{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	var fund domain.Fund
	require.NoError(t, p.URS.Where("external_code = ?", "SIAR-1").First(&fund).Error)

	var nav domain.FundNav
	require.NoError(t, p.URS.Where("fund_id = ? AND date = ?", fund.ID, day("2023-03-01")).First(&nav).Error)
	assert.True(t, nav.NavPerUnit.Equal(d("1100")))
	assert.Equal(t, "2023-03-01", time.Time(nav.Date).Format(time.DateOnly))
}

// TestMigrateNavIdempotent only inserts the diff on re-runs.
func TestMigrateNavIdempotent(t *testing.T) {
	p := newTestPipeline(t)
	seedWorld(t, p)
	ctx := context.Background()
	require.NoError(t, p.ImportReferences(ctx))

	require.NoError(t, p.MigrateNav(ctx))
	seedNav(t, p, 5, 1, "2023-05-01", "1250")
	require.NoError(t, p.MigrateNav(ctx))
	require.NoError(t, p.MigrateNav(ctx))

	var count int64
	require.NoError(t, p.URS.Model(&domain.FundNav{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

// TestMigrateNavSkipsIneligibleRows: soft-deleted rows and rows without a
// product or date never reach the target.
func TestMigrateNavSkipsIneligibleRows(t *testing.T) {
	p := newTestPipeline(t)
	seedWorld(t, p)
	ctx := context.Background()
	require.NoError(t, p.ImportReferences(ctx))

	require.NoError(t, p.SIAR.Create(&siar.NAV{
		IDNav: 90, IDProduct: i64ptr(1), NAVDate: tptr("2023-06-01"),
		Value: dptr("1300"), SysRecStatus: 0,
	}).Error)
	require.NoError(t, p.SIAR.Create(&siar.NAV{
		IDNav: 91, IDProduct: nil, NAVDate: tptr("2023-06-02"),
		Value: dptr("1300"), SysRecStatus: 1,
	}).Error)
	require.NoError(t, p.SIAR.Create(&siar.NAV{
		IDNav: 92, IDProduct: i64ptr(1), NAVDate: nil,
		Value: dptr("1300"), SysRecStatus: 1,
	}).Error)
	// Unknown product: no imported fund to attach to.
	require.NoError(t, p.SIAR.Create(&siar.NAV{
		IDNav: 93, IDProduct: i64ptr(77), NAVDate: tptr("2023-06-03"),
		Value: dptr("1300"), SysRecStatus: 1,
	}).Error)

	require.NoError(t, p.MigrateNav(ctx))

	var count int64
	require.NoError(t, p.URS.Model(&domain.FundNav{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

// TestMigrateNavDuplicateSourceRows: two source rows for the same pair
// collapse into one target row via the unique index.
func TestMigrateNavDuplicateSourceRows(t *testing.T) {
	p := newTestPipeline(t)
	seedWorld(t, p)
	ctx := context.Background()
	require.NoError(t, p.ImportReferences(ctx))

	seedNav(t, p, 94, 1, "2023-02-01", "999")

	require.NoError(t, p.MigrateNav(ctx))

	var fund domain.Fund
	require.NoError(t, p.URS.Where("external_code = ?", "SIAR-1").First(&fund).Error)
	var navs []domain.FundNav
	require.NoError(t, p.URS.Where("fund_id = ? AND date = ?", fund.ID, day("2023-02-01")).Find(&navs).Error)
	assert.Len(t, navs, 1)
}
