package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/threestatement/internal/coa"
)

var (
	ErrInvalidFilter = errors.New("invalid balance filter")

	// ErrBalanceOverflow reports a filtered sum outside the int64 cents
	// range. Each entry fits, but many large entries over a wide range may
	// not.
	ErrBalanceOverflow = errors.New("balance sum exceeds the int64 cents range")
)

// Filter selects the entries summed by SumBalance. Zero-valued fields do not
// constrain. Any master-account predicate restricts the sum to mapped
// accounts; Unmapped selects only accounts without a mapping and cannot be
// combined with master-account predicates.
type Filter struct {
	Categories   []coa.Category
	CashFlow     coa.CashFlowCategory
	AccountCode  string
	ExcludeCodes []string
	Unmapped     bool
}

func (f Filter) mapped() bool {
	return len(f.Categories) > 0 || f.CashFlow != "" || f.AccountCode != "" || len(f.ExcludeCodes) > 0
}

func (f Filter) Validate() error {
	if f.Unmapped && f.mapped() {
		return fmt.Errorf("%w: unmapped cannot be combined with master account predicates", ErrInvalidFilter)
	}
	for _, c := range f.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: category %q", ErrInvalidFilter, c)
		}
	}
	if f.CashFlow != "" && !f.CashFlow.Valid() {
		return fmt.Errorf("%w: cash flow category %q", ErrInvalidFilter, f.CashFlow)
	}
	return nil
}

// sumQuery builds the SQL and arguments of a filtered sum.
func sumQuery(companyID string, r DateRange, f Filter) (string, []any) {
	var q strings.Builder
	q.WriteString(`SELECT CAST(COALESCE(SUM(e.balance), 0) AS BIGINT)
		FROM trial_balance_entries e
		JOIN reporting_periods p ON p.id = e.reporting_period_id
		JOIN company_accounts ca ON ca.id = e.company_account_id`)

	switch {
	case f.Unmapped:
		q.WriteString(`
		LEFT JOIN account_mappings m ON m.company_account_id = ca.id`)
	case f.mapped():
		q.WriteString(`
		JOIN account_mappings m ON m.company_account_id = ca.id
		JOIN master_accounts ma ON ma.id = m.master_account_id`)
	}

	q.WriteString(`
		WHERE p.company_id = ? AND p.period_date >= ? AND p.period_date <= ?`)
	args := []any{companyID, dateArg(r.Start), dateArg(r.End)}

	if f.Unmapped {
		q.WriteString(` AND m.id IS NULL`)
	}
	if len(f.Categories) > 0 {
		q.WriteString(` AND ma.category IN (` + placeholders(len(f.Categories)) + `)`)
		for _, c := range f.Categories {
			args = append(args, string(c))
		}
	}
	if f.CashFlow != "" {
		q.WriteString(` AND ma.cash_flow_category = ?`)
		args = append(args, string(f.CashFlow))
	}
	if f.AccountCode != "" {
		q.WriteString(` AND ma.account_code = ?`)
		args = append(args, f.AccountCode)
	}
	if len(f.ExcludeCodes) > 0 {
		q.WriteString(` AND ma.account_code NOT IN (` + placeholders(len(f.ExcludeCodes)) + `)`)
		for _, c := range f.ExcludeCodes {
			args = append(args, c)
		}
	}
	return q.String(), args
}

// SumBalance returns the signed sum in cents of the company's entries whose
// period date falls in r and whose account matches f. No matching entries
// sums to zero.
func (s *Store) SumBalance(ctx context.Context, companyID string, r DateRange, f Filter) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	query, args := sumQuery(companyID, r, f)

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var total int64
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&total); err != nil {
		if isSumOverflow(err) {
			return 0, fmt.Errorf("%w over %s", ErrBalanceOverflow, r)
		}
		return 0, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// isSumOverflow matches SQLite's "integer overflow" from SUM and Postgres
// numeric_value_out_of_range from the BIGINT cast.
func isSumOverflow(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "22003"
	}
	return strings.Contains(err.Error(), "integer overflow")
}
