// Package coa defines the master chart of accounts shared by every company:
// the closed category sets that drive statement placement and the seeded
// reference chart.
package coa

import (
	"fmt"
	"strings"
)

// Category places an account on the balance sheet or income statement.
type Category string

const (
	Asset     Category = "ASSET"
	Liability Category = "LIABILITY"
	Equity    Category = "EQUITY"
	Revenue   Category = "REVENUE"
	Expense   Category = "EXPENSE"
)

var categories = []Category{Asset, Liability, Equity, Revenue, Expense}

func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

// CashFlowCategory buckets an account on the cash-flow statement. It is
// independent of Category.
type CashFlowCategory string

const (
	Operating CashFlowCategory = "OPERATING"
	Investing CashFlowCategory = "INVESTING"
	Financing CashFlowCategory = "FINANCING"
	NonCash   CashFlowCategory = "NON_CASH"
)

var cashFlowCategories = []CashFlowCategory{Operating, Investing, Financing, NonCash}

func (c CashFlowCategory) Valid() bool {
	for _, v := range cashFlowCategories {
		if c == v {
			return true
		}
	}
	return false
}

// NormalBalance is informational only. Sign handling is driven by Category
// and CashFlowCategory.
type NormalBalance string

const (
	Debit  NormalBalance = "DEBIT"
	Credit NormalBalance = "CREDIT"
)

func (n NormalBalance) Valid() bool {
	return n == Debit || n == Credit
}

// MasterAccount is an immutable reference entry of the master chart.
type MasterAccount struct {
	ID               string           `json:"id"`
	Code             string           `json:"account_code"`
	Name             string           `json:"name"`
	Category         Category         `json:"category"`
	SubCategory      string           `json:"sub_category"`
	CashFlowCategory CashFlowCategory `json:"cash_flow_category"`
	NormalBalance    NormalBalance    `json:"normal_balance"`
}

// Validate reports the first field that does not belong to its closed set.
func (m MasterAccount) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return fmt.Errorf("master account: code is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("master account %s: name is required", m.Code)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("master account %s: invalid category %q", m.Code, m.Category)
	}
	if !m.CashFlowCategory.Valid() {
		return fmt.Errorf("master account %s: invalid cash flow category %q", m.Code, m.CashFlowCategory)
	}
	if !m.NormalBalance.Valid() {
		return fmt.Errorf("master account %s: invalid normal balance %q", m.Code, m.NormalBalance)
	}
	return nil
}

// DefaultChart returns the seeded master chart of accounts.
func DefaultChart() []MasterAccount {
	return []MasterAccount{
		{Code: "1000", Name: "Cash and Cash Equivalents", Category: Asset, SubCategory: "Current Assets", CashFlowCategory: NonCash, NormalBalance: Debit},
		{Code: "1100", Name: "Accounts Receivable", Category: Asset, SubCategory: "Current Assets", CashFlowCategory: Operating, NormalBalance: Debit},
		{Code: "1500", Name: "Property, Plant & Equipment", Category: Asset, SubCategory: "Non-Current Assets", CashFlowCategory: Investing, NormalBalance: Debit},
		{Code: "1600", Name: "Accumulated Depreciation", Category: Asset, SubCategory: "Non-Current Assets", CashFlowCategory: NonCash, NormalBalance: Credit},
		{Code: "2000", Name: "Accounts Payable", Category: Liability, SubCategory: "Current Liabilities", CashFlowCategory: Operating, NormalBalance: Credit},
		{Code: "2500", Name: "Long-Term Debt", Category: Liability, SubCategory: "Non-Current Liabilities", CashFlowCategory: Financing, NormalBalance: Credit},
		{Code: "3000", Name: "Common Stock", Category: Equity, SubCategory: "Equity", CashFlowCategory: Financing, NormalBalance: Credit},
		{Code: "3500", Name: "Retained Earnings", Category: Equity, SubCategory: "Equity", CashFlowCategory: NonCash, NormalBalance: Credit},
		{Code: "4000", Name: "Product Revenue", Category: Revenue, SubCategory: "Revenue", CashFlowCategory: Operating, NormalBalance: Credit},
		{Code: "5000", Name: "Cost of Goods Sold", Category: Expense, SubCategory: "COGS", CashFlowCategory: Operating, NormalBalance: Debit},
		{Code: "6000", Name: "Salaries Expense", Category: Expense, SubCategory: "Operating Expenses", CashFlowCategory: Operating, NormalBalance: Debit},
		{Code: "6500", Name: "Depreciation Expense", Category: Expense, SubCategory: "Operating Expenses", CashFlowCategory: NonCash, NormalBalance: Debit},
	}
}
