package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/threestatement/internal/coa"
)

// SeedChart inserts master accounts that are not present yet, keyed by code.
// Existing entries are left untouched; the chart is read-only once seeded.
func (s *Store) SeedChart(ctx context.Context, chart []coa.MasterAccount) (int, error) {
	for _, a := range chart {
		if err := a.Validate(); err != nil {
			return 0, err
		}
	}

	inserted := 0
	err := s.InTx(ctx, func(tx *Tx) error {
		inserted = 0
		for _, a := range chart {
			id := a.ID
			if id == "" {
				id = uuid.NewString()
			}
			res, err := tx.exec(ctx, `
				INSERT INTO master_accounts (id, account_code, name, category, sub_category, cash_flow_category, normal_balance)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (account_code) DO NOTHING
			`, id, a.Code, a.Name, string(a.Category), a.SubCategory, string(a.CashFlowCategory), string(a.NormalBalance))
			if err != nil {
				return fmt.Errorf("failed to seed master account %s: %w", a.Code, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

const masterAccountColumns = `id, account_code, name, category, sub_category, cash_flow_category, normal_balance`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMasterAccount(row rowScanner) (coa.MasterAccount, error) {
	var a coa.MasterAccount
	var category, cashFlow, normal string
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &category, &a.SubCategory, &cashFlow, &normal); err != nil {
		return a, err
	}
	a.Category = coa.Category(category)
	a.CashFlowCategory = coa.CashFlowCategory(cashFlow)
	a.NormalBalance = coa.NormalBalance(normal)
	return a, nil
}

// ListMasterAccounts returns the master chart ordered by code.
func (s *Store) ListMasterAccounts(ctx context.Context) ([]coa.MasterAccount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+masterAccountColumns+` FROM master_accounts ORDER BY account_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list master accounts: %w", err)
	}
	defer rows.Close()

	var out []coa.MasterAccount
	for rows.Next() {
		a, err := scanMasterAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan master account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetMasterAccount(ctx context.Context, id string) (*coa.MasterAccount, error) {
	return s.masterAccountBy(ctx, "id", id)
}

func (s *Store) GetMasterAccountByCode(ctx context.Context, code string) (*coa.MasterAccount, error) {
	return s.masterAccountBy(ctx, "account_code", code)
}

func (s *Store) masterAccountBy(ctx context.Context, column, value string) (*coa.MasterAccount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+masterAccountColumns+` FROM master_accounts WHERE `+column+` = ?`), value)
	a, err := scanMasterAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("master account %s: %w", value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get master account: %w", err)
	}
	return &a, nil
}
