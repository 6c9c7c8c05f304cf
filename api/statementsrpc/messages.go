package statementsrpc

import (
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/statements"
)

// StatementRequest selects either one inclusive date range or a list of
// single-day periods. Dates are YYYY-MM-DD.
type StatementRequest struct {
	CompanyID   string   `json:"company_id"`
	PeriodStart string   `json:"period_start,omitempty"`
	PeriodEnd   string   `json:"period_end,omitempty"`
	Periods     []string `json:"periods,omitempty"`
}

type IncomeStatementResponse struct {
	Statements []statements.IncomeStatement `json:"statements"`
}

type BalanceSheetRequest struct {
	CompanyID  string   `json:"company_id"`
	PeriodDate string   `json:"period_date,omitempty"`
	Periods    []string `json:"periods,omitempty"`
}

type BalanceSheetResponse struct {
	Statements []statements.BalanceSheet `json:"statements"`
}

type CashFlowResponse struct {
	Statements []statements.CashFlowStatement `json:"statements"`
}

type ForecastRequest struct {
	CompanyID string `json:"company_id"`
	Scenario  string `json:"scenario,omitempty"`
}

type ForecastResponse struct {
	Scenario    string                `json:"scenario"`
	BasePeriod  string                `json:"base_period"`
	Actuals     statements.Actuals    `json:"actuals"`
	Projections []forecast.Projection `json:"projections"`
}

type ListPeriodsRequest struct {
	CompanyID string `json:"company_id"`
}

type ListPeriodsResponse struct {
	Periods []string `json:"periods"`
}
