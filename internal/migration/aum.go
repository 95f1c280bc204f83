package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urs-migrator/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// fundFeeTerms is what the AUM step needs from a fund: the annual fee
// percentage and the day-count denominator.
type fundFeeTerms struct {
	Rate  decimal.Decimal
	Basis int
}

// aumPosition is one investor's open position in one fund as of a NAV date.
type aumPosition struct {
	InvestorID uuid.UUID       `gorm:"column:investor_id"`
	FundID     int64           `gorm:"column:fund_id"`
	UnitsAfter decimal.Decimal `gorm:"column:units_after"`
}

// Most recent holding per (investor, fund) at or before a cut-off date; closed
// positions are dropped.
const openPositionsSQL = `
SELECT s.investor_id, s.fund_id, s.units_after
FROM (
	SELECT ih.investor_id, ih.fund_id, ih.units_after,
		ROW_NUMBER() OVER (
			PARTITION BY ih.investor_id, ih.fund_id
			ORDER BY t.transaction_date DESC, ih.id DESC
		) AS rn
	FROM investor_holdings ih
	JOIN transactions t ON t.id = ih.transaction_id
	WHERE t.transaction_date <= ?
) s
WHERE s.rn = 1 AND s.units_after > 0`

// GenerateAum values every open position at every NAV date that has not been
// rolled up yet and accrues the management fee for the days elapsed since the
// fund's previous NAV date. Dates already present in aum_daily are skipped,
// so reruns only pick up new NAV dates.
func (p *Pipeline) GenerateAum(ctx context.Context) error {
	dates, err := p.pendingAumDates(ctx)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		p.Log.Info().Msg("every NAV date is already rolled up, nothing to do")
		return nil
	}
	p.Log.Info().Int("dates", len(dates)).Msg("generating AUM for pending NAV dates")

	terms, err := p.fundFeeTerms(ctx)
	if err != nil {
		return err
	}
	agents, err := p.latestAgentByInvestor(ctx)
	if err != nil {
		return err
	}
	navs, gaps, err := p.navLedger(ctx)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.AumWorkers)
	for _, date := range dates {
		date := date
		group.Go(func() error {
			return p.generateAumForDate(groupCtx, date, terms, agents, navs, gaps)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	p.Log.Info().Int("dates", len(dates)).Msg("completed generating AUM")

	stillPending, err := p.pendingAumDates(ctx)
	if err != nil {
		return err
	}
	if len(stillPending) == 0 {
		p.Log.Info().Msg("every NAV date now has an AUM roll-up")
	} else {
		for i, date := range stillPending {
			if i == 10 {
				break
			}
			p.Log.Warn().Str("date", date.Format(time.DateOnly)).
				Msg("NAV date still lacks an AUM roll-up")
		}
		p.Log.Warn().Int("still_missing", len(stillPending)).
			Msg("NAV dates still lack AUM roll-ups after generation")
	}
	return nil
}

// pendingAumDates returns the NAV dates without an aum_daily row, oldest
// first.
func (p *Pipeline) pendingAumDates(ctx context.Context) ([]time.Time, error) {
	var navDates []time.Time
	err := p.URS.WithContext(ctx).
		Model(&domain.FundNav{}).
		Distinct("date").
		Order("date asc").
		Pluck("date", &navDates).Error
	if err != nil {
		return nil, fmt.Errorf("nav dates: %w", err)
	}

	var doneDates []time.Time
	err = p.URS.WithContext(ctx).
		Model(&domain.AumDaily{}).
		Pluck("date", &doneDates).Error
	if err != nil {
		return nil, fmt.Errorf("aum dates: %w", err)
	}
	done := make(map[string]struct{}, len(doneDates))
	for _, d := range doneDates {
		done[d.Format(time.DateOnly)] = struct{}{}
	}

	var pending []time.Time
	for _, d := range navDates {
		if _, ok := done[d.Format(time.DateOnly)]; ok {
			continue
		}
		pending = append(pending, midnight(d))
	}
	return pending, nil
}

func (p *Pipeline) fundFeeTerms(ctx context.Context) (map[int64]fundFeeTerms, error) {
	var funds []domain.Fund
	if err := p.URS.WithContext(ctx).Find(&funds).Error; err != nil {
		return nil, fmt.Errorf("funds: %w", err)
	}
	terms := make(map[int64]fundFeeTerms, len(funds))
	for _, fund := range funds {
		basis := fund.ValuationBasis
		if basis <= 0 {
			basis = 365
		}
		terms[fund.ID] = fundFeeTerms{Rate: fund.ManagementFeeRate, Basis: basis}
	}
	return terms, nil
}

// latestAgentByInvestor maps each investor to their most recently effective
// agent. Links without an effective date are treated as the oldest.
func (p *Pipeline) latestAgentByInvestor(ctx context.Context) (map[uuid.UUID]int64, error) {
	var links []domain.AgentInvestor
	err := p.URS.WithContext(ctx).
		Order("effective_date asc").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("agent links: %w", err)
	}
	latest := make(map[uuid.UUID]int64, len(links))
	for _, link := range links {
		latest[link.InvestorID] = link.AgentID
	}
	return latest, nil
}

// navLedger loads every NAV row and derives, per (fund, date), the unit price
// and the number of days since the fund's previous NAV date (at least 1).
func (p *Pipeline) navLedger(ctx context.Context) (map[string]decimal.Decimal, map[string]int, error) {
	var navs []domain.FundNav
	if err := p.URS.WithContext(ctx).Find(&navs).Error; err != nil {
		return nil, nil, fmt.Errorf("navs: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(navs))
	datesByFund := map[int64][]time.Time{}
	for _, nav := range navs {
		date := midnight(time.Time(nav.Date))
		prices[navKey(nav.FundID, date)] = nav.NavPerUnit
		datesByFund[nav.FundID] = append(datesByFund[nav.FundID], date)
	}

	gaps := make(map[string]int, len(navs))
	for fundID, dates := range datesByFund {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for i, date := range dates {
			days := 1
			if i > 0 {
				days = int(date.Sub(dates[i-1]).Hours() / 24)
				if days < 1 {
					days = 1
				}
			}
			gaps[navKey(fundID, date)] = days
		}
	}
	return prices, gaps, nil
}

func (p *Pipeline) generateAumForDate(
	ctx context.Context,
	date time.Time,
	terms map[int64]fundFeeTerms,
	agents map[uuid.UUID]int64,
	navs map[string]decimal.Decimal,
	gaps map[string]int,
) error {
	var positions []aumPosition
	err := p.URS.WithContext(ctx).Raw(openPositionsSQL, date).Scan(&positions).Error
	if err != nil {
		return fmt.Errorf("positions at %s: %w", date.Format(time.DateOnly), err)
	}

	totalAum := decimal.Zero
	totalFee := decimal.Zero
	rows := make([]domain.AumInvestorDaily, 0, len(positions))
	for _, pos := range positions {
		key := navKey(pos.FundID, date)
		price, ok := navs[key]
		if !ok {
			// Fund was not valued on this date; the position rolls
			// into the fund's next NAV date instead.
			continue
		}
		term := terms[pos.FundID]
		if term.Basis == 0 {
			term.Basis = 365
		}
		days := gaps[key]
		if days < 1 {
			days = 1
		}

		aum := pos.UnitsAfter.Mul(price)
		fee := aum.Mul(term.Rate).
			Div(hundred).
			Div(decimal.NewFromInt(int64(term.Basis))).
			Mul(decimal.NewFromInt(int64(days)))

		agentID, ok := agents[pos.InvestorID]
		if !ok {
			p.Log.Debug().Str("investor", pos.InvestorID.String()).
				Msg("skipping position: investor has no agent assignment")
			continue
		}
		rows = append(rows, domain.AumInvestorDaily{
			InvestorID:    pos.InvestorID,
			AgentID:       agentID,
			FundID:        pos.FundID,
			Date:          date,
			Units:         pos.UnitsAfter,
			NavPerUnit:    price,
			AumValue:      aum,
			Days:          days,
			ManagementFee: fee,
		})
		totalAum = totalAum.Add(aum)
		totalFee = totalFee.Add(fee)
	}

	// A date with no attributable positions writes no roll-up; it stays
	// pending and shows up in the closing verification.
	if len(rows) == 0 {
		p.Log.Debug().Str("date", date.Format(time.DateOnly)).
			Msg("no open positions to roll up")
		return nil
	}

	err = p.URS.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, p.PageSize).Error
	if err != nil {
		return fmt.Errorf("insert investor AUM at %s: %w", date.Format(time.DateOnly), err)
	}

	var daily domain.AumDaily
	err = p.URS.WithContext(ctx).Where("date = ?", date).First(&daily).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		daily = domain.AumDaily{Date: date}
	case err != nil:
		return fmt.Errorf("load daily AUM at %s: %w", date.Format(time.DateOnly), err)
	}
	daily.AumValue = totalAum
	daily.ManagementFee = totalFee
	if err := p.URS.WithContext(ctx).Save(&daily).Error; err != nil {
		return fmt.Errorf("save daily AUM at %s: %w", date.Format(time.DateOnly), err)
	}

	p.Log.Debug().
		Str("date", date.Format(time.DateOnly)).
		Int("positions", len(rows)).
		Str("aum", totalAum.String()).
		Str("fee", totalFee.String()).
		Msg("rolled up AUM date")
	return nil
}

// midnight truncates a timestamp to UTC midnight.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
