package statements

// IncomeStatement is shown in conventional signs: revenue and expenses
// positive, net income positive for a profit.
type IncomeStatement struct {
	Period             string `json:"period"`
	TotalRevenuesCents int64  `json:"total_revenues_cents"`
	TotalExpensesCents int64  `json:"total_expenses_cents"`
	NetIncomeCents     int64  `json:"net_income_cents"`
}

// BalanceSheet is inception-to-date as of PeriodDate.
type BalanceSheet struct {
	PeriodDate            string `json:"period_date"`
	TotalAssetsCents      int64  `json:"total_assets_cents"`
	TotalLiabilitiesCents int64  `json:"total_liabilities_cents"`
	TotalEquityCents      int64  `json:"total_equity_cents"`
	UnmappedBalanceCents  int64  `json:"unmapped_balance_cents"`
	IsBalancedEquation    bool   `json:"is_balanced_equation"`
}

type CashFlowStatement struct {
	Period                     string `json:"period"`
	NetIncomeCents             int64  `json:"net_income_cents"`
	NonCashAdjustmentsCents    int64  `json:"non_cash_adjustments_cents"`
	OperatingWCDeltaCents      int64  `json:"operating_wc_delta_cents"`
	NetCashFromOperationsCents int64  `json:"net_cash_from_operations_cents"`
	NetCashFromInvestingCents  int64  `json:"net_cash_from_investing_cents"`
	NetCashFromFinancingCents  int64  `json:"net_cash_from_financing_cents"`
	NetChangeInCashCents       int64  `json:"net_change_in_cash_cents"`
	BeginningCashCents         int64  `json:"beginning_cash_cents"`
	EndingCashCents            int64  `json:"ending_cash_cents"`
}

// Actuals is the base-period snapshot a forecast is seeded from. Revenue and
// expenses cover the base period only; working capital and cash are
// inception-to-date balances.
type Actuals struct {
	RevenueCents           int64 `json:"revenue_cents"`
	ExpensesCents          int64 `json:"expenses_cents"`
	NetIncomeCents         int64 `json:"net_income_cents"`
	CashCents              int64 `json:"cash_cents"`
	NetWorkingCapitalCents int64 `json:"net_wc_cents"`
}

// SummaryRow is one dashboard point, actual or forecast.
type SummaryRow struct {
	Period    string `json:"period"`
	Revenue   int64  `json:"revenue"`
	EBITDA    int64  `json:"ebitda"`
	NetIncome int64  `json:"net_income"`
	Cash      int64  `json:"cash"`
	Type      string `json:"type"`
}

const (
	RowActual   = "actual"
	RowForecast = "forecast"
)
