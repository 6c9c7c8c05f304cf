package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/threestatement/internal/ledger"
)

const DefaultScenario = "base"

var (
	ErrMissingBaseConfiguration = errors.New("missing base configuration")
	ErrBasePeriodNotImported    = errors.New("base period not imported")
	ErrConfigNotFound           = errors.New("forecast config not found")
	ErrInvalidConfig            = errors.New("invalid forecast config")

	// ErrOverflow reports drivers that push a projected figure out of the
	// int64 cents range. It matches ErrInvalidConfig as well.
	ErrOverflow = fmt.Errorf("%w: projection overflow", ErrInvalidConfig)
)

// BasePeriodNotImportedError names the configured base period that has no
// trial balance.
type BasePeriodNotImportedError struct {
	Period string
}

func (e *BasePeriodNotImportedError) Error() string {
	return fmt.Sprintf("base period %s has no imported trial balance", e.Period)
}

func (e *BasePeriodNotImportedError) Is(target error) bool { return target == ErrBasePeriodNotImported }

// DefaultConfig returns the drivers a new scenario starts from.
func DefaultConfig(companyID, scenario string) ledger.ForecastConfig {
	if scenario == "" {
		scenario = DefaultScenario
	}
	return ledger.ForecastConfig{
		CompanyID:        companyID,
		ScenarioName:     scenario,
		NumPeriods:       3,
		RevenueGrowthBps: 500,
		COGSPctBps:       6000,
		OpexGrowthBps:    300,
		TaxRateBps:       2100,
		CapexCents:       0,
		DACents:          0,
		WCPctBps:         1000,
	}
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// ValidateConfig checks driver ranges. Growth rates may be negative but not
// below -100%; percentages of revenue and the tax rate lie in [0, 100%].
func ValidateConfig(c ledger.ForecastConfig) error {
	if strings.TrimSpace(c.ScenarioName) == "" {
		return invalid("scenario_name", "is required")
	}
	if c.NumPeriods < 1 || c.NumPeriods > MaxPeriods {
		return invalid("num_periods", "must be between 1 and %d, got %d", MaxPeriods, c.NumPeriods)
	}
	if c.RevenueGrowthBps < -bpsScale {
		return invalid("revenue_growth_pct", "must be at least -%d bps, got %d", bpsScale, c.RevenueGrowthBps)
	}
	if c.OpexGrowthBps < -bpsScale {
		return invalid("opex_growth_pct", "must be at least -%d bps, got %d", bpsScale, c.OpexGrowthBps)
	}
	for _, f := range []struct {
		name string
		v    int64
	}{
		{"cogs_pct_of_revenue", c.COGSPctBps},
		{"tax_rate_pct", c.TaxRateBps},
		{"wc_pct_of_revenue", c.WCPctBps},
	} {
		if f.v < 0 || f.v > bpsScale {
			return invalid(f.name, "must be between 0 and %d bps, got %d", bpsScale, f.v)
		}
	}
	if c.CapexCents < 0 {
		return invalid("capex_cents", "must not be negative")
	}
	if c.DACents < 0 {
		return invalid("da_cents", "must not be negative")
	}
	return nil
}
