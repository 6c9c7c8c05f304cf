package coa

import "fmt"

const (
	DefaultCashCode             = "1000"
	DefaultRetainedEarningsCode = "3500"
)

// Codes names the master accounts the statement engine treats specially.
// Cash is excluded from operating working capital and read for ending cash.
// RetainedEarnings is excluded from financing activity.
type Codes struct {
	Cash             string `yaml:"cash_account_code" json:"cash_account_code"`
	RetainedEarnings string `yaml:"retained_earnings_code" json:"retained_earnings_code"`
}

func DefaultCodes() Codes {
	return Codes{
		Cash:             DefaultCashCode,
		RetainedEarnings: DefaultRetainedEarningsCode,
	}
}

// Validate checks the codes against a seeded chart: cash must be an ASSET and
// retained earnings an EQUITY account.
func (c Codes) Validate(chart []MasterAccount) error {
	byCode := make(map[string]MasterAccount, len(chart))
	for _, a := range chart {
		byCode[a.Code] = a
	}

	cash, ok := byCode[c.Cash]
	if !ok {
		return fmt.Errorf("cash account code %q not found in chart of accounts", c.Cash)
	}
	if cash.Category != Asset {
		return fmt.Errorf("cash account code %q has category %s, want %s", c.Cash, cash.Category, Asset)
	}

	re, ok := byCode[c.RetainedEarnings]
	if !ok {
		return fmt.Errorf("retained earnings code %q not found in chart of accounts", c.RetainedEarnings)
	}
	if re.Category != Equity {
		return fmt.Errorf("retained earnings code %q has category %s, want %s", c.RetainedEarnings, re.Category, Equity)
	}

	if c.Cash == c.RetainedEarnings {
		return fmt.Errorf("cash and retained earnings codes must differ")
	}
	return nil
}
