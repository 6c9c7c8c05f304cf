// Package statements derives the income statement, balance sheet and
// cash-flow statement from ledger sums.
//
// Entries are stored debit-positive and credit-negative. Every display sign
// flip happens in this package and nowhere else.
package statements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/ledger"
)

// ErrInvariantViolation marks a balance sheet whose raw totals do not net to
// zero. Ingestion guarantees every period nets to zero, so this indicates a
// defect rather than bad input.
var ErrInvariantViolation = errors.New("invariant violation")

// Store is the ledger capability the aggregator reads through.
type Store interface {
	SumBalance(ctx context.Context, companyID string, r ledger.DateRange, f ledger.Filter) (int64, error)
	ListPeriods(ctx context.Context, companyID string) ([]time.Time, error)
}

type Aggregator struct {
	store  Store
	codes  coa.Codes
	logger *slog.Logger
}

func NewAggregator(store Store, codes coa.Codes, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: store, codes: codes, logger: logger}
}

func (a *Aggregator) Codes() coa.Codes { return a.codes }

var (
	revenueOnly   = ledger.Filter{Categories: []coa.Category{coa.Revenue}}
	expenseOnly   = ledger.Filter{Categories: []coa.Category{coa.Expense}}
	assetOnly     = ledger.Filter{Categories: []coa.Category{coa.Asset}}
	liabilityOnly = ledger.Filter{Categories: []coa.Category{coa.Liability}}
	equityOnly    = ledger.Filter{Categories: []coa.Category{coa.Equity}}
	unmapped      = ledger.Filter{Unmapped: true}
)

func (a *Aggregator) workingCapitalFilter() ledger.Filter {
	return ledger.Filter{
		Categories:   []coa.Category{coa.Asset, coa.Liability},
		CashFlow:     coa.Operating,
		ExcludeCodes: []string{a.codes.Cash},
	}
}

// sums fetches several filtered sums over one range.
func (a *Aggregator) sums(ctx context.Context, companyID string, r ledger.DateRange, filters ...ledger.Filter) ([]int64, error) {
	out := make([]int64, len(filters))
	for i, f := range filters {
		v, err := a.store.SumBalance(ctx, companyID, r, f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// netIncome returns -(revenue_raw + expense_raw) over r with both raw sums.
func (a *Aggregator) netIncome(ctx context.Context, companyID string, r ledger.DateRange) (revRaw, expRaw, ni int64, err error) {
	v, err := a.sums(ctx, companyID, r, revenueOnly, expenseOnly)
	if err != nil {
		return 0, 0, 0, err
	}
	return v[0], v[1], -(v[0] + v[1]), nil
}

// IncomeStatement covers every period dated within r.
func (a *Aggregator) IncomeStatement(ctx context.Context, companyID string, r ledger.DateRange) (*IncomeStatement, error) {
	revRaw, expRaw, ni, err := a.netIncome(ctx, companyID, r)
	if err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}
	return &IncomeStatement{
		Period:             r.String(),
		TotalRevenuesCents: -revRaw,
		TotalExpensesCents: expRaw,
		NetIncomeCents:     ni,
	}, nil
}

// BalanceSheet sums from inception through asOf. When the raw equation does
// not hold the sheet is still returned, together with an error wrapping
// ErrInvariantViolation.
func (a *Aggregator) BalanceSheet(ctx context.Context, companyID string, asOf time.Time) (*BalanceSheet, error) {
	r := ledger.InceptionTo(asOf)
	v, err := a.sums(ctx, companyID, r, assetOnly, liabilityOnly, equityOnly, revenueOnly, expenseOnly, unmapped)
	if err != nil {
		return nil, fmt.Errorf("balance sheet: %w", err)
	}
	assets, liabilities, equity, rev, exp, residual := v[0], v[1], v[2], v[3], v[4], v[5]
	retainedImpact := rev + exp

	bs := &BalanceSheet{
		PeriodDate:            ledger.FormatDate(asOf),
		TotalAssetsCents:      assets,
		TotalLiabilitiesCents: -liabilities,
		TotalEquityCents:      -(equity + retainedImpact),
		UnmappedBalanceCents:  residual,
		IsBalancedEquation:    assets+liabilities+equity+retainedImpact+residual == 0,
	}

	if !bs.IsBalancedEquation {
		gap := assets + liabilities + equity + retainedImpact + residual
		a.logger.Error("balance sheet equation violated",
			"company_id", companyID,
			"period_date", bs.PeriodDate,
			"discrepancy_cents", gap,
			"unmapped_cents", residual,
		)
		return bs, fmt.Errorf("%w: balance sheet for %s is off by %d cents", ErrInvariantViolation, bs.PeriodDate, gap)
	}
	return bs, nil
}

// CashFlow covers every period dated within r. Ending cash is the
// inception-to-date balance of the cash account at r.End.
func (a *Aggregator) CashFlow(ctx context.Context, companyID string, r ledger.DateRange) (*CashFlowStatement, error) {
	_, _, ni, err := a.netIncome(ctx, companyID, r)
	if err != nil {
		return nil, fmt.Errorf("cash flow: %w", err)
	}

	v, err := a.sums(ctx, companyID, r,
		ledger.Filter{CashFlow: coa.NonCash},
		a.workingCapitalFilter(),
		ledger.Filter{CashFlow: coa.Investing},
		ledger.Filter{CashFlow: coa.Financing, ExcludeCodes: []string{a.codes.RetainedEarnings}},
	)
	if err != nil {
		return nil, fmt.Errorf("cash flow: %w", err)
	}
	nonCash, wcRaw, investingRaw, financingRaw := v[0], v[1], v[2], v[3]

	endingCash, err := a.store.SumBalance(ctx, companyID, ledger.InceptionTo(r.End), ledger.Filter{AccountCode: a.codes.Cash})
	if err != nil {
		return nil, fmt.Errorf("cash flow: %w", err)
	}

	cf := &CashFlowStatement{
		Period:                    r.String(),
		NetIncomeCents:            ni,
		NonCashAdjustmentsCents:   nonCash,
		OperatingWCDeltaCents:     -wcRaw,
		NetCashFromInvestingCents: -investingRaw,
		NetCashFromFinancingCents: -financingRaw,
		EndingCashCents:           endingCash,
	}
	cf.NetCashFromOperationsCents = cf.NetIncomeCents + cf.NonCashAdjustmentsCents + cf.OperatingWCDeltaCents
	cf.NetChangeInCashCents = cf.NetCashFromOperationsCents + cf.NetCashFromInvestingCents + cf.NetCashFromFinancingCents
	cf.BeginningCashCents = cf.EndingCashCents - cf.NetChangeInCashCents
	return cf, nil
}

func single(d time.Time) ledger.DateRange {
	return ledger.DateRange{Start: d, End: d}
}

// IncomeStatements returns one statement per period date, each covering only
// that period's trial balance.
func (a *Aggregator) IncomeStatements(ctx context.Context, companyID string, periods []time.Time) ([]IncomeStatement, error) {
	out := make([]IncomeStatement, 0, len(periods))
	for _, d := range periods {
		is, err := a.IncomeStatement(ctx, companyID, single(d))
		if err != nil {
			return nil, err
		}
		is.Period = ledger.FormatDate(d)
		out = append(out, *is)
	}
	return out, nil
}

func (a *Aggregator) BalanceSheets(ctx context.Context, companyID string, periods []time.Time) ([]BalanceSheet, error) {
	out := make([]BalanceSheet, 0, len(periods))
	for _, d := range periods {
		bs, err := a.BalanceSheet(ctx, companyID, d)
		if err != nil {
			return nil, err
		}
		out = append(out, *bs)
	}
	return out, nil
}

func (a *Aggregator) CashFlows(ctx context.Context, companyID string, periods []time.Time) ([]CashFlowStatement, error) {
	out := make([]CashFlowStatement, 0, len(periods))
	for _, d := range periods {
		cf, err := a.CashFlow(ctx, companyID, single(d))
		if err != nil {
			return nil, err
		}
		cf.Period = ledger.FormatDate(d)
		out = append(out, *cf)
	}
	return out, nil
}

// Actuals returns the forecast seed for one base period.
func (a *Aggregator) Actuals(ctx context.Context, companyID string, base time.Time) (*Actuals, error) {
	revRaw, expRaw, ni, err := a.netIncome(ctx, companyID, single(base))
	if err != nil {
		return nil, fmt.Errorf("actuals: %w", err)
	}

	toDate := ledger.InceptionTo(base)
	v, err := a.sums(ctx, companyID, toDate, a.workingCapitalFilter(), ledger.Filter{AccountCode: a.codes.Cash})
	if err != nil {
		return nil, fmt.Errorf("actuals: %w", err)
	}

	return &Actuals{
		RevenueCents:           -revRaw,
		ExpensesCents:          expRaw,
		NetIncomeCents:         ni,
		NetWorkingCapitalCents: v[0],
		CashCents:              v[1],
	}, nil
}

// Summary returns one dashboard row per imported period, oldest first.
// Actual EBITDA is revenue minus total expenses. It does not separate cost
// of goods sold from operating expense, unlike forecast EBITDA.
func (a *Aggregator) Summary(ctx context.Context, companyID string) ([]SummaryRow, error) {
	periods, err := a.store.ListPeriods(ctx, companyID)
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(periods))
	for i := len(periods) - 1; i >= 0; i-- {
		d := periods[i]
		is, err := a.IncomeStatement(ctx, companyID, single(d))
		if err != nil {
			return nil, err
		}
		cash, err := a.store.SumBalance(ctx, companyID, ledger.InceptionTo(d), ledger.Filter{AccountCode: a.codes.Cash})
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		rows = append(rows, SummaryRow{
			Period:    ledger.FormatDate(d),
			Revenue:   is.TotalRevenuesCents,
			EBITDA:    is.TotalRevenuesCents - is.TotalExpensesCents,
			NetIncome: is.NetIncomeCents,
			Cash:      cash,
			Type:      RowActual,
		})
	}
	return rows, nil
}
