package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens a file database, or a private in-memory one for
// ":memory:". Foreign keys are enforced on every connection.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=1"
	} else {
		dsn += "?_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer. A single connection also keeps an in-memory
	// database alive for the lifetime of the handle.
	db.SetMaxOpenConns(1)

	return NewStore(db, SQLite), nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		fiscal_year_end INTEGER NOT NULL DEFAULT 12 CHECK (fiscal_year_end BETWEEN 1 AND 12),
		currency TEXT NOT NULL DEFAULT 'USD' CHECK (length(currency) = 3),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS master_accounts (
		id TEXT PRIMARY KEY,
		account_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL CHECK (category IN ('ASSET', 'LIABILITY', 'EQUITY', 'REVENUE', 'EXPENSE')),
		sub_category TEXT NOT NULL DEFAULT '',
		cash_flow_category TEXT NOT NULL CHECK (cash_flow_category IN ('OPERATING', 'INVESTING', 'FINANCING', 'NON_CASH')),
		normal_balance TEXT NOT NULL CHECK (normal_balance IN ('DEBIT', 'CREDIT'))
	)`,
	`CREATE TABLE IF NOT EXISTS company_accounts (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL REFERENCES companies(id),
		import_account_number TEXT NOT NULL,
		import_account_name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		UNIQUE (company_id, import_account_number)
	)`,
	`CREATE TABLE IF NOT EXISTS account_mappings (
		id TEXT PRIMARY KEY,
		company_account_id TEXT NOT NULL UNIQUE REFERENCES company_accounts(id),
		master_account_id TEXT NOT NULL REFERENCES master_accounts(id),
		mapped_by TEXT NOT NULL DEFAULT '',
		mapped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reporting_periods (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL REFERENCES companies(id),
		period_date TEXT NOT NULL,
		UNIQUE (company_id, period_date)
	)`,
	`CREATE TABLE IF NOT EXISTS trial_balance_entries (
		id TEXT PRIMARY KEY,
		reporting_period_id TEXT NOT NULL REFERENCES reporting_periods(id),
		company_account_id TEXT NOT NULL REFERENCES company_accounts(id),
		balance INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tb_entries_period ON trial_balance_entries(reporting_period_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tb_entries_account ON trial_balance_entries(company_account_id)`,
	`CREATE TABLE IF NOT EXISTS forecast_configs (
		company_id TEXT NOT NULL REFERENCES companies(id),
		scenario_name TEXT NOT NULL,
		base_period TEXT,
		num_periods INTEGER NOT NULL CHECK (num_periods BETWEEN 1 AND 12),
		revenue_growth_bps INTEGER NOT NULL,
		cogs_pct_bps INTEGER NOT NULL,
		opex_growth_bps INTEGER NOT NULL,
		tax_rate_bps INTEGER NOT NULL,
		capex_cents INTEGER NOT NULL,
		da_cents INTEGER NOT NULL,
		wc_pct_bps INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (company_id, scenario_name)
	)`,
}
