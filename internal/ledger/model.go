package ledger

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/example/threestatement/internal/coa"
)

const DateLayout = "2006-01-02"

// MinDate is the inception date used as the start of balance-sheet ranges.
var MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// Company owns its accounts, periods, entries and mappings.
type Company struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FiscalYearEnd int       `json:"fiscal_year_end"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompanyAccount is a raw account discovered while importing a trial balance.
type CompanyAccount struct {
	ID                  string `json:"id"`
	CompanyID           string `json:"company_id"`
	ImportAccountNumber string `json:"import_account_number"`
	ImportAccountName   string `json:"import_account_name"`
	IsActive            bool   `json:"is_active"`
}

// Mapping links one company account to one master account.
type Mapping struct {
	ID               string    `json:"id"`
	CompanyAccountID string    `json:"company_account_id"`
	MasterAccountID  string    `json:"master_account_id"`
	MappedBy         string    `json:"mapped_by,omitempty"`
	MappedAt         time.Time `json:"mapped_at"`
}

// Period is one trial-balance cutoff for a company.
type Period struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	PeriodDate time.Time `json:"period_date"`
}

// Entry is one signed balance in cents. Debits are positive, credits negative.
type Entry struct {
	ID               string `json:"id"`
	PeriodID         string `json:"reporting_period_id"`
	CompanyAccountID string `json:"company_account_id"`
	Balance          int64  `json:"balance"`
}

// UnmappedAccount is an active company account without a mapping, with its
// inception-to-date balance.
type UnmappedAccount struct {
	CompanyAccountID    string `json:"company_account_id"`
	ImportAccountNumber string `json:"import_account_number"`
	ImportAccountName   string `json:"import_account_name"`
	BalanceCents        int64  `json:"balance_cents"`
}

// AccountMapping is a company account joined with its master account, if any.
type AccountMapping struct {
	CompanyAccount
	Master *coa.MasterAccount `json:"master_account,omitempty"`
}

// ForecastConfig holds the drivers of one forecast scenario. Rates are basis
// points (10000 = 100%), absolute amounts are cents.
type ForecastConfig struct {
	CompanyID        string     `json:"company_id"`
	ScenarioName     string     `json:"scenario_name"`
	BasePeriod       *time.Time `json:"base_period"`
	NumPeriods       int        `json:"num_periods"`
	RevenueGrowthBps int64      `json:"revenue_growth_pct"`
	COGSPctBps       int64      `json:"cogs_pct_of_revenue"`
	OpexGrowthBps    int64      `json:"opex_growth_pct"`
	TaxRateBps       int64      `json:"tax_rate_pct"`
	CapexCents       int64      `json:"capex_cents"`
	DACents          int64      `json:"da_cents"`
	WCPctBps         int64      `json:"wc_pct_of_revenue"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// InceptionTo returns the range from MinDate through end.
func InceptionTo(end time.Time) DateRange {
	return DateRange{Start: MinDate, End: end}
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + " to " + FormatDate(r.End)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dbDate moves calendar dates through both drivers. Postgres returns DATE as
// time.Time, SQLite returns the stored text.
type dbDate struct {
	Time  time.Time
	Valid bool
}

func dateArg(t time.Time) string {
	return FormatDate(Day(t))
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = Day(v), true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time, d.Valid = t, true
	return nil
}

func (d dbDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return dateArg(d.Time), nil
}

func (d dbDate) ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
