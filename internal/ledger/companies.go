package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateCompany inserts a company, assigning an id when none is given.
func (s *Store) CreateCompany(ctx context.Context, c Company) (*Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	c.Currency = strings.ToUpper(c.Currency)
	if c.FiscalYearEnd == 0 {
		c.FiscalYearEnd = 12
	}
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := s.exec(ctx, `
		INSERT INTO companies (id, name, fiscal_year_end, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.FiscalYearEnd, c.Currency, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert company: %w", err)
	}
	return &c, nil
}

// UpdateCompany replaces the mutable company fields.
func (s *Store) UpdateCompany(ctx context.Context, c Company) (*Company, error) {
	res, err := s.exec(ctx, `
		UPDATE companies SET name = ?, fiscal_year_end = ?, currency = ?
		WHERE id = ?
	`, c.Name, c.FiscalYearEnd, strings.ToUpper(c.Currency), c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("company %s: %w", c.ID, ErrNotFound)
	}
	return s.GetCompany(ctx, c.ID)
}

func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var c Company
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, fiscal_year_end, currency, created_at
		FROM companies WHERE id = ?
	`), id).Scan(&c.ID, &c.Name, &c.FiscalYearEnd, &c.Currency, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, fiscal_year_end, currency, created_at
		FROM companies ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.FiscalYearEnd, &c.Currency, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
