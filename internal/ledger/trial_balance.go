package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertPeriod returns the period for (company, date), creating it if absent.
func (t *Tx) UpsertPeriod(ctx context.Context, companyID string, date time.Time) (*Period, bool, error) {
	res, err := t.exec(ctx, `
		INSERT INTO reporting_periods (id, company_id, period_date)
		VALUES (?, ?, ?)
		ON CONFLICT (company_id, period_date) DO NOTHING
	`, uuid.NewString(), companyID, dateArg(date))
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert period: %w", err)
	}
	created := false
	if n, _ := res.RowsAffected(); n > 0 {
		created = true
	}

	p := Period{CompanyID: companyID, PeriodDate: Day(date)}
	err = t.queryRow(ctx, `
		SELECT id FROM reporting_periods WHERE company_id = ? AND period_date = ?
	`, companyID, dateArg(date)).Scan(&p.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read period: %w", err)
	}
	return &p, created, nil
}

// UpsertCompanyAccount resolves the account keyed by (company, number),
// creating it with the given name if absent. The name is not part of the key
// and an existing account keeps its name.
func (t *Tx) UpsertCompanyAccount(ctx context.Context, companyID, number, name string) (string, bool, error) {
	res, err := t.exec(ctx, `
		INSERT INTO company_accounts (id, company_id, import_account_number, import_account_name, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (company_id, import_account_number) DO NOTHING
	`, uuid.NewString(), companyID, number, name, true)
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert company account %s: %w", number, err)
	}
	created := false
	if n, _ := res.RowsAffected(); n > 0 {
		created = true
	}

	var id string
	err = t.queryRow(ctx, `
		SELECT id FROM company_accounts WHERE company_id = ? AND import_account_number = ?
	`, companyID, number).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("failed to read company account %s: %w", number, err)
	}
	return id, created, nil
}

// ReplaceEntries discards every entry of the period and writes entries in
// their place.
func (t *Tx) ReplaceEntries(ctx context.Context, periodID string, entries []Entry) error {
	if _, err := t.exec(ctx, `DELETE FROM trial_balance_entries WHERE reporting_period_id = ?`, periodID); err != nil {
		return fmt.Errorf("failed to clear period entries: %w", err)
	}

	stmt, err := t.tx.PrepareContext(ctx, rebind(t.dialect, `
		INSERT INTO trial_balance_entries (id, reporting_period_id, company_account_id, balance)
		VALUES (?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, id, periodID, e.CompanyAccountID, e.Balance); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return nil
}

// ListPeriods returns the distinct period dates of a company, newest first.
func (s *Store) ListPeriods(ctx context.Context, companyID string) ([]time.Time, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT DISTINCT period_date FROM reporting_periods
		WHERE company_id = ?
		ORDER BY period_date DESC
	`), companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d dbDate
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		out = append(out, d.Time)
	}
	return out, rows.Err()
}

// GetPeriod returns the period for (company, date) or ErrNotFound.
func (s *Store) GetPeriod(ctx context.Context, companyID string, date time.Time) (*Period, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	p := Period{CompanyID: companyID, PeriodDate: Day(date)}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id FROM reporting_periods WHERE company_id = ? AND period_date = ?
	`), companyID, dateArg(date)).Scan(&p.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("period %s: %w", FormatDate(date), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	return &p, nil
}

// PeriodEntries returns the entries of one period.
func (s *Store) PeriodEntries(ctx context.Context, periodID string) ([]Entry, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, reporting_period_id, company_account_id, balance
		FROM trial_balance_entries WHERE reporting_period_id = ?
		ORDER BY id
	`), periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PeriodID, &e.CompanyAccountID, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeletePeriodResult reports what a period removal discarded.
type DeletePeriodResult struct {
	EntriesDeleted  int64 `json:"entries_deleted"`
	AccountsDeleted int64 `json:"accounts_deleted"`
	MappingsDeleted int64 `json:"mappings_deleted"`
}

// DeletePeriod removes a period and its entries, then removes company
// accounts left without entries in any period together with their mappings.
func (s *Store) DeletePeriod(ctx context.Context, companyID string, date time.Time) (*DeletePeriodResult, error) {
	var out DeletePeriodResult
	err := s.InTx(ctx, func(tx *Tx) error {
		out = DeletePeriodResult{}

		var periodID string
		err := tx.queryRow(ctx, `
			SELECT id FROM reporting_periods WHERE company_id = ? AND period_date = ?
		`, companyID, dateArg(date)).Scan(&periodID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("period %s: %w", FormatDate(date), ErrNotFound)
			}
			return fmt.Errorf("failed to find period: %w", err)
		}

		res, err := tx.exec(ctx, `DELETE FROM trial_balance_entries WHERE reporting_period_id = ?`, periodID)
		if err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		out.EntriesDeleted, _ = res.RowsAffected()

		if _, err := tx.exec(ctx, `DELETE FROM reporting_periods WHERE id = ?`, periodID); err != nil {
			return fmt.Errorf("failed to delete period: %w", err)
		}

		const orphans = `
			SELECT ca.id FROM company_accounts ca
			WHERE ca.company_id = ?
			AND NOT EXISTS (SELECT 1 FROM trial_balance_entries e WHERE e.company_account_id = ca.id)`

		res, err = tx.exec(ctx, `DELETE FROM account_mappings WHERE company_account_id IN (`+orphans+`)`, companyID)
		if err != nil {
			return fmt.Errorf("failed to delete orphaned mappings: %w", err)
		}
		out.MappingsDeleted, _ = res.RowsAffected()

		res, err = tx.exec(ctx, `DELETE FROM company_accounts WHERE id IN (`+orphans+`)`, companyID)
		if err != nil {
			return fmt.Errorf("failed to delete orphaned accounts: %w", err)
		}
		out.AccountsDeleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PeriodTotal is the raw entry sum of one period.
type PeriodTotal struct {
	PeriodID   string
	PeriodDate time.Time
	Entries    int64
	Total      int64
}

// PeriodTotals returns the entry count and raw sum of every period of a company.
func (s *Store) PeriodTotals(ctx context.Context, companyID string) ([]PeriodTotal, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT p.id, p.period_date, COUNT(e.id), CAST(COALESCE(SUM(e.balance), 0) AS BIGINT)
		FROM reporting_periods p
		LEFT JOIN trial_balance_entries e ON e.reporting_period_id = p.id
		WHERE p.company_id = ?
		GROUP BY p.id, p.period_date
		ORDER BY p.period_date
	`), companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to total periods: %w", err)
	}
	defer rows.Close()

	var out []PeriodTotal
	for rows.Next() {
		var pt PeriodTotal
		var d dbDate
		if err := rows.Scan(&pt.PeriodID, &d, &pt.Entries, &pt.Total); err != nil {
			return nil, fmt.Errorf("failed to scan period total: %w", err)
		}
		pt.PeriodDate = d.Time
		out = append(out, pt)
	}
	return out, rows.Err()
}
