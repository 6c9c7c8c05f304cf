package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const forecastConfigColumns = `company_id, scenario_name, base_period, num_periods,
	revenue_growth_bps, cogs_pct_bps, opex_growth_bps, tax_rate_bps,
	capex_cents, da_cents, wc_pct_bps, updated_at`

// GetForecastConfig returns the configuration of one scenario or ErrNotFound.
func (s *Store) GetForecastConfig(ctx context.Context, companyID, scenario string) (*ForecastConfig, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var c ForecastConfig
	var base dbDate
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+forecastConfigColumns+`
		FROM forecast_configs WHERE company_id = ? AND scenario_name = ?
	`), companyID, scenario).Scan(
		&c.CompanyID, &c.ScenarioName, &base, &c.NumPeriods,
		&c.RevenueGrowthBps, &c.COGSPctBps, &c.OpexGrowthBps, &c.TaxRateBps,
		&c.CapexCents, &c.DACents, &c.WCPctBps, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("forecast config %s: %w", scenario, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get forecast config: %w", err)
	}
	c.BasePeriod = base.ptr()
	return &c, nil
}

// UpsertForecastConfig writes every driver field of the scenario in one
// statement. Nothing is merged with a previous version.
func (s *Store) UpsertForecastConfig(ctx context.Context, c ForecastConfig) (*ForecastConfig, error) {
	var base dbDate
	if c.BasePeriod != nil {
		base = dbDate{Time: Day(*c.BasePeriod), Valid: true}
	}
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := s.exec(ctx, `
		INSERT INTO forecast_configs (`+forecastConfigColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id, scenario_name) DO UPDATE SET
			base_period = excluded.base_period,
			num_periods = excluded.num_periods,
			revenue_growth_bps = excluded.revenue_growth_bps,
			cogs_pct_bps = excluded.cogs_pct_bps,
			opex_growth_bps = excluded.opex_growth_bps,
			tax_rate_bps = excluded.tax_rate_bps,
			capex_cents = excluded.capex_cents,
			da_cents = excluded.da_cents,
			wc_pct_bps = excluded.wc_pct_bps,
			updated_at = excluded.updated_at
	`, c.CompanyID, c.ScenarioName, base, c.NumPeriods,
		c.RevenueGrowthBps, c.COGSPctBps, c.OpexGrowthBps, c.TaxRateBps,
		c.CapexCents, c.DACents, c.WCPctBps, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert forecast config: %w", err)
	}
	return &c, nil
}
