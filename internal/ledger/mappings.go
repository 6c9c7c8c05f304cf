package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/threestatement/internal/coa"
)

// SetMapping upserts the single mapping of a company account. An existing
// mapping is updated in place.
func (t *Tx) SetMapping(ctx context.Context, companyAccountID, masterAccountID, mappedBy string, at time.Time) error {
	_, err := t.exec(ctx, `
		INSERT INTO account_mappings (id, company_account_id, master_account_id, mapped_by, mapped_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (company_account_id) DO UPDATE SET
			master_account_id = excluded.master_account_id,
			mapped_by = excluded.mapped_by,
			mapped_at = excluded.mapped_at
	`, uuid.NewString(), companyAccountID, masterAccountID, mappedBy, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert mapping: %w", err)
	}
	return nil
}

// CompanyAccountOwner returns the company of a company account.
func (t *Tx) CompanyAccountOwner(ctx context.Context, companyAccountID string) (string, error) {
	var companyID string
	err := t.queryRow(ctx, `SELECT company_id FROM company_accounts WHERE id = ?`, companyAccountID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("company account %s: %w", companyAccountID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get company account: %w", err)
	}
	return companyID, nil
}

// MasterAccountExists reports whether a master account id is present.
func (t *Tx) MasterAccountExists(ctx context.Context, masterAccountID string) (bool, error) {
	var n int
	err := t.queryRow(ctx, `SELECT COUNT(*) FROM master_accounts WHERE id = ?`, masterAccountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check master account: %w", err)
	}
	return n > 0, nil
}

// ClearMappings deletes every mapping of a company's accounts.
func (s *Store) ClearMappings(ctx context.Context, companyID string) (int64, error) {
	res, err := s.exec(ctx, `
		DELETE FROM account_mappings
		WHERE company_account_id IN (SELECT id FROM company_accounts WHERE company_id = ?)
	`, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear mappings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) GetCompanyAccount(ctx context.Context, id string) (*CompanyAccount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var a CompanyAccount
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, company_id, import_account_number, import_account_name, is_active
		FROM company_accounts WHERE id = ?
	`), id).Scan(&a.ID, &a.CompanyID, &a.ImportAccountNumber, &a.ImportAccountName, &a.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company account %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company account: %w", err)
	}
	return &a, nil
}

// FindCompanyAccount looks an account up by its import number.
func (s *Store) FindCompanyAccount(ctx context.Context, companyID, number string) (*CompanyAccount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var a CompanyAccount
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, company_id, import_account_number, import_account_name, is_active
		FROM company_accounts WHERE company_id = ? AND import_account_number = ?
	`), companyID, number).Scan(&a.ID, &a.CompanyID, &a.ImportAccountNumber, &a.ImportAccountName, &a.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company account %s: %w", number, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find company account: %w", err)
	}
	return &a, nil
}

// ListAccountMappings returns every company account with its master account,
// ordered by import number. Master is nil for unmapped accounts.
func (s *Store) ListAccountMappings(ctx context.Context, companyID string) ([]AccountMapping, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT ca.id, ca.company_id, ca.import_account_number, ca.import_account_name, ca.is_active,
			ma.id, ma.account_code, ma.name, ma.category, ma.sub_category, ma.cash_flow_category, ma.normal_balance
		FROM company_accounts ca
		LEFT JOIN account_mappings m ON m.company_account_id = ca.id
		LEFT JOIN master_accounts ma ON ma.id = m.master_account_id
		WHERE ca.company_id = ?
		ORDER BY ca.import_account_number
	`), companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account mappings: %w", err)
	}
	defer rows.Close()

	var out []AccountMapping
	for rows.Next() {
		var am AccountMapping
		var id, code, name, category, sub, cashFlow, normal sql.NullString
		if err := rows.Scan(&am.ID, &am.CompanyID, &am.ImportAccountNumber, &am.ImportAccountName, &am.IsActive,
			&id, &code, &name, &category, &sub, &cashFlow, &normal); err != nil {
			return nil, fmt.Errorf("failed to scan account mapping: %w", err)
		}
		if id.Valid {
			am.Master = &coa.MasterAccount{
				ID:               id.String,
				Code:             code.String,
				Name:             name.String,
				Category:         coa.Category(category.String),
				SubCategory:      sub.String,
				CashFlowCategory: coa.CashFlowCategory(cashFlow.String),
				NormalBalance:    coa.NormalBalance(normal.String),
			}
		}
		out = append(out, am)
	}
	return out, rows.Err()
}

// ListUnmapped returns the active accounts of a company that have no mapping,
// with their balance from inception through asOf.
func (s *Store) ListUnmapped(ctx context.Context, companyID string, asOf time.Time) ([]UnmappedAccount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT ca.id, ca.import_account_number, ca.import_account_name,
			CAST(COALESCE(SUM(CASE WHEN p.period_date >= ? AND p.period_date <= ? THEN e.balance ELSE 0 END), 0) AS BIGINT)
		FROM company_accounts ca
		LEFT JOIN account_mappings m ON m.company_account_id = ca.id
		LEFT JOIN trial_balance_entries e ON e.company_account_id = ca.id
		LEFT JOIN reporting_periods p ON p.id = e.reporting_period_id
		WHERE ca.company_id = ? AND ca.is_active = ? AND m.id IS NULL
		GROUP BY ca.id, ca.import_account_number, ca.import_account_name
		ORDER BY ca.import_account_number
	`), dateArg(MinDate), dateArg(asOf), companyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmapped accounts: %w", err)
	}
	defer rows.Close()

	var out []UnmappedAccount
	for rows.Next() {
		var u UnmappedAccount
		if err := rows.Scan(&u.CompanyAccountID, &u.ImportAccountNumber, &u.ImportAccountName, &u.BalanceCents); err != nil {
			return nil, fmt.Errorf("failed to scan unmapped account: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
