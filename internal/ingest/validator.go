// Package ingest validates trial-balance uploads and writes them to the
// ledger as a single atomic replacement of the period.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/threestatement/internal/ledger"
)

// Row is one lexed trial-balance line. Balance is the integer-cents lexeme as
// it appeared in the upload.
type Row struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Balance       string `json:"balance"`

	// Line is the source line of a CSV row. Zero means the row's 1-based
	// position is reported instead.
	Line int `json:"-"`
}

// Line is a validated row.
type Line struct {
	AccountNumber string
	AccountName   string
	Balance       int64
}

// Result summarises a successful import.
type Result struct {
	PeriodID       string    `json:"reporting_period_id"`
	PeriodDate     time.Time `json:"period_date"`
	PeriodCreated  bool      `json:"period_created"`
	EntriesWritten int       `json:"entries_written"`
	AccountsAdded  int       `json:"accounts_created"`
}

// Store is the subset of the ledger the validator writes through.
type Store interface {
	GetCompany(ctx context.Context, id string) (*ledger.Company, error)
	InTx(ctx context.Context, fn func(*ledger.Tx) error) error
}

type Validator struct {
	store  Store
	logger *slog.Logger
}

func NewValidator(store Store, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{store: store, logger: logger}
}

// integerLexeme is the only accepted balance form: an optional sign and
// decimal digits, no exponent, separator or fraction.
var integerLexeme = regexp.MustCompile(`^[+-]?[0-9]+$`)

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// Normalize trims every field, parses balances and checks the zero-sum
// invariant. It performs no I/O.
func Normalize(rows []Row) ([]Line, error) {
	if len(rows) == 0 {
		return nil, &MalformedRowError{Reason: "no rows"}
	}

	lines := make([]Line, 0, len(rows))
	sum := decimal.Zero
	for i, r := range rows {
		rowNum := i + 1
		if r.Line > 0 {
			rowNum = r.Line
		}
		number := strings.TrimSpace(r.AccountNumber)
		name := strings.TrimSpace(r.AccountName)
		raw := strings.TrimSpace(r.Balance)

		switch {
		case number == "":
			return nil, &MalformedRowError{Row: rowNum, Field: "account_number", Reason: "is required"}
		case name == "":
			return nil, &MalformedRowError{Row: rowNum, Field: "account_name", Reason: "is required"}
		case raw == "":
			return nil, &MalformedRowError{Row: rowNum, Field: "balance", Reason: "is required"}
		}

		if !integerLexeme.MatchString(raw) {
			if _, err := decimal.NewFromString(raw); err == nil {
				return nil, &MalformedRowError{Row: rowNum, Field: "balance", Reason: fmt.Sprintf("%q is not a whole number of cents", raw)}
			}
			return nil, &MalformedRowError{Row: rowNum, Field: "balance", Reason: fmt.Sprintf("%q is not a number", raw)}
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &MalformedRowError{Row: rowNum, Field: "balance", Reason: fmt.Sprintf("%q is not a number", raw)}
		}
		if d.LessThan(minCents) || d.GreaterThan(maxCents) {
			return nil, &MalformedRowError{Row: rowNum, Field: "balance", Reason: fmt.Sprintf("%q is out of range", raw)}
		}

		sum = sum.Add(d)
		lines = append(lines, Line{AccountNumber: number, AccountName: name, Balance: d.IntPart()})
	}

	if !sum.IsZero() {
		if !sum.GreaterThanOrEqual(minCents) || !sum.LessThanOrEqual(maxCents) {
			return nil, &MalformedRowError{Reason: "balance total is out of range"}
		}
		return nil, &OutOfBalanceError{Discrepancy: sum.IntPart()}
	}
	return lines, nil
}

// Import validates rows and replaces the period's entries with them in one
// transaction. Nothing is written when validation fails.
func (v *Validator) Import(ctx context.Context, companyID string, periodDate time.Time, rows []Row) (*Result, error) {
	lines, err := Normalize(rows)
	if err != nil {
		var oob *OutOfBalanceError
		if errors.As(err, &oob) {
			v.logger.Warn("trial balance rejected", "company_id", companyID, "period_date", ledger.FormatDate(periodDate), "discrepancy_cents", oob.Discrepancy)
		}
		return nil, err
	}

	if _, err := v.store.GetCompany(ctx, companyID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		return nil, err
	}

	var res Result
	err = v.store.InTx(ctx, func(tx *ledger.Tx) error {
		res = Result{}

		period, created, err := tx.UpsertPeriod(ctx, companyID, periodDate)
		if err != nil {
			return err
		}
		res.PeriodID = period.ID
		res.PeriodDate = period.PeriodDate
		res.PeriodCreated = created

		accounts := make(map[string]string, len(lines))
		entries := make([]ledger.Entry, 0, len(lines))
		for _, l := range lines {
			id, ok := accounts[l.AccountNumber]
			if !ok {
				var added bool
				id, added, err = tx.UpsertCompanyAccount(ctx, companyID, l.AccountNumber, l.AccountName)
				if err != nil {
					return err
				}
				accounts[l.AccountNumber] = id
				if added {
					res.AccountsAdded++
				}
			}
			entries = append(entries, ledger.Entry{CompanyAccountID: id, Balance: l.Balance})
		}

		if err := tx.ReplaceEntries(ctx, period.ID, entries); err != nil {
			return err
		}
		res.EntriesWritten = len(entries)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import trial balance: %w", err)
	}

	v.logger.Info("trial balance imported",
		"company_id", companyID,
		"period_date", ledger.FormatDate(res.PeriodDate),
		"entries", res.EntriesWritten,
		"accounts_created", res.AccountsAdded,
		"period_created", res.PeriodCreated,
	)
	return &res, nil
}
