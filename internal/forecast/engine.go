// Package forecast projects a driver-based three-statement forecast from one
// actual base period.
//
// All arithmetic is in integer cents. Every rate application is floored
// toward negative infinity, so successive periods may drift by a bounded
// number of cents; this is the intended rounding policy.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/threestatement/internal/ledger"
)

const (
	MaxPeriods = 12
	bpsScale   = 10000
)

// Seed is the state the first projected period is derived from.
type Seed struct {
	RevenueCents           int64
	OpexCents              int64
	NetWorkingCapitalCents int64
	CashCents              int64
}

// Projection is one forecast period in statement form.
type Projection struct {
	Period     string `json:"period"`
	IsForecast bool   `json:"is_forecast"`

	RevenueCents     int64 `json:"revenue_cents"`
	COGSCents        int64 `json:"cogs_cents"`
	GrossProfitCents int64 `json:"gross_profit_cents"`
	OpexCents        int64 `json:"opex_cents"`
	EBITDACents      int64 `json:"ebitda_cents"`
	EBITCents        int64 `json:"ebit_cents"`
	TaxCents         int64 `json:"tax_cents"`
	NetIncomeCents   int64 `json:"net_income_cents"`

	NetIncomeCFCents           int64 `json:"net_income_cf_cents"`
	DACents                    int64 `json:"da_cents"`
	DeltaWCCents               int64 `json:"delta_wc_cents"`
	NetCashFromOperationsCents int64 `json:"net_cash_from_operations_cents"`
	CapexCents                 int64 `json:"capex_cents"`
	NetCashFromInvestingCents  int64 `json:"net_cash_from_investing_cents"`
	NetCashFromFinancingCents  int64 `json:"net_cash_from_financing_cents"`
	NetChangeInCashCents       int64 `json:"net_change_in_cash_cents"`
	BeginningCashCents         int64 `json:"beginning_cash_cents"`
	EndingCashCents            int64 `json:"ending_cash_cents"`

	CashCents                  int64 `json:"cash_cents"`
	NetWorkingCapitalCents     int64 `json:"net_wc_cents"`
	RetainedEarningsDeltaCents int64 `json:"retained_earnings_delta_cents"`
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// calc keeps the first overflow seen across a chain of cent operations.
type calc struct {
	err error
}

func (c *calc) fail(op string) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s exceeds the int64 cents range", ErrOverflow, op)
	}
}

func (c *calc) cents(d decimal.Decimal, op string) int64 {
	if d.LessThan(minCents) || d.GreaterThan(maxCents) {
		c.fail(op)
		return 0
	}
	return d.IntPart()
}

// grow returns floor(amount * (1 + bps/10000)).
func (c *calc) grow(amount, bps int64, op string) int64 {
	return c.scale(amount, decimal.NewFromInt(bps).Add(decimal.NewFromInt(bpsScale)), op)
}

// ratio returns floor(amount * bps/10000).
func (c *calc) ratio(amount, bps int64, op string) int64 {
	return c.scale(amount, decimal.NewFromInt(bps), op)
}

func (c *calc) scale(amount int64, bps decimal.Decimal, op string) int64 {
	d := decimal.NewFromInt(amount).
		Mul(bps).
		Shift(-4).
		Floor()
	return c.cents(d, op)
}

func (c *calc) add(a, b int64, op string) int64 {
	return c.cents(decimal.NewFromInt(a).Add(decimal.NewFromInt(b)), op)
}

func (c *calc) sub(a, b int64, op string) int64 {
	return c.cents(decimal.NewFromInt(a).Sub(decimal.NewFromInt(b)), op)
}

func (c *calc) neg(a int64, op string) int64 {
	return c.sub(0, a, op)
}

// Project runs the recurrence for cfg.NumPeriods steps after the configured
// base period. It is pure: identical inputs always yield identical output.
// A figure leaving the int64 cents range fails with ErrOverflow naming the
// period and line item.
func Project(cfg ledger.ForecastConfig, seed Seed) ([]Projection, error) {
	if cfg.BasePeriod == nil {
		return nil, ErrMissingBaseConfiguration
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	base := *cfg.BasePeriod

	prevRevenue := seed.RevenueCents
	prevOpex := seed.OpexCents
	prevWC := seed.NetWorkingCapitalCents
	endingCash := seed.CashCents

	out := make([]Projection, 0, cfg.NumPeriods)
	for n := 1; n <= cfg.NumPeriods; n++ {
		p := Projection{
			Period:     ledger.FormatDate(AddMonths(base, n)),
			IsForecast: true,
		}
		var c calc

		p.RevenueCents = c.grow(prevRevenue, cfg.RevenueGrowthBps, "revenue")
		p.COGSCents = c.ratio(p.RevenueCents, cfg.COGSPctBps, "cogs")
		p.GrossProfitCents = c.sub(p.RevenueCents, p.COGSCents, "gross profit")
		p.OpexCents = c.grow(prevOpex, cfg.OpexGrowthBps, "opex")
		p.EBITDACents = c.sub(p.GrossProfitCents, p.OpexCents, "ebitda")
		p.EBITCents = c.sub(p.EBITDACents, cfg.DACents, "ebit")
		p.TaxCents = c.ratio(max(p.EBITCents, 0), cfg.TaxRateBps, "tax")
		p.NetIncomeCents = c.sub(p.EBITCents, p.TaxCents, "net income")

		netWC := c.ratio(p.RevenueCents, cfg.WCPctBps, "net working capital")
		deltaWC := c.sub(netWC, prevWC, "working capital change")
		cfo := c.sub(c.add(p.NetIncomeCents, cfg.DACents, "operating cash"), deltaWC, "operating cash")
		cfi := -cfg.CapexCents
		var cff int64

		p.NetIncomeCFCents = p.NetIncomeCents
		p.DACents = cfg.DACents
		p.DeltaWCCents = c.neg(deltaWC, "working capital change")
		p.NetCashFromOperationsCents = cfo
		p.CapexCents = -cfg.CapexCents
		p.NetCashFromInvestingCents = cfi
		p.NetCashFromFinancingCents = cff
		p.NetChangeInCashCents = c.add(c.add(cfo, cfi, "net change in cash"), cff, "net change in cash")
		p.BeginningCashCents = endingCash
		p.EndingCashCents = c.add(p.BeginningCashCents, p.NetChangeInCashCents, "ending cash")

		if c.err != nil {
			return nil, fmt.Errorf("period %s: %w", p.Period, c.err)
		}

		p.CashCents = p.EndingCashCents
		p.NetWorkingCapitalCents = netWC
		p.RetainedEarningsDeltaCents = p.NetIncomeCents

		out = append(out, p)

		prevRevenue = p.RevenueCents
		prevOpex = p.OpexCents
		prevWC = netWC
		endingCash = p.EndingCashCents
	}
	return out, nil
}

// AddMonths advances a calendar date by n months, clamping the day to the
// end of the target month: Jan 31 + 1 month is Feb 28 or 29.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
