package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres connects through a pgx pool and exposes it as database/sql.
func OpenPostgres(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := NewStore(stdlib.OpenDBFromPool(pool), Postgres)
	s.closers = append(s.closers, pool.Close)
	return s, nil
}

// isSerializationFailure reports SQLSTATE 40001, which SERIALIZABLE
// transactions raise when they must be retried.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		fiscal_year_end INTEGER NOT NULL DEFAULT 12 CHECK (fiscal_year_end BETWEEN 1 AND 12),
		currency TEXT NOT NULL DEFAULT 'USD' CHECK (length(currency) = 3),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
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
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE (company_id, import_account_number)
	)`,
	`CREATE TABLE IF NOT EXISTS account_mappings (
		id TEXT PRIMARY KEY,
		company_account_id TEXT NOT NULL UNIQUE REFERENCES company_accounts(id),
		master_account_id TEXT NOT NULL REFERENCES master_accounts(id),
		mapped_by TEXT NOT NULL DEFAULT '',
		mapped_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reporting_periods (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL REFERENCES companies(id),
		period_date DATE NOT NULL,
		UNIQUE (company_id, period_date)
	)`,
	`CREATE TABLE IF NOT EXISTS trial_balance_entries (
		id TEXT PRIMARY KEY,
		reporting_period_id TEXT NOT NULL REFERENCES reporting_periods(id),
		company_account_id TEXT NOT NULL REFERENCES company_accounts(id),
		balance BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tb_entries_period ON trial_balance_entries(reporting_period_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tb_entries_account ON trial_balance_entries(company_account_id)`,
	`CREATE TABLE IF NOT EXISTS forecast_configs (
		company_id TEXT NOT NULL REFERENCES companies(id),
		scenario_name TEXT NOT NULL,
		base_period DATE,
		num_periods INTEGER NOT NULL CHECK (num_periods BETWEEN 1 AND 12),
		revenue_growth_bps BIGINT NOT NULL,
		cogs_pct_bps BIGINT NOT NULL,
		opex_growth_bps BIGINT NOT NULL,
		tax_rate_bps BIGINT NOT NULL,
		capex_cents BIGINT NOT NULL,
		da_cents BIGINT NOT NULL,
		wc_pct_bps BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (company_id, scenario_name)
	)`,
}
