package ledger

import (
	"context"
	"fmt"
	"time"
)

// Validator checks stored ledger data against the trial-balance invariants.
type Validator struct {
	store *Store
}

func NewValidator(store *Store) *Validator {
	return &Validator{store: store}
}

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	IsValid        bool           `json:"is_valid"`
	ValidationType string         `json:"validation_type"`
	Message        string         `json:"message"`
	PeriodDate     string         `json:"period_date,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Details        map[string]any `json:"details,omitempty"`
}

// ValidatePeriodBalances checks that every stored period of the company nets
// to zero.
func (v *Validator) ValidatePeriodBalances(ctx context.Context, companyID string) ([]*ValidationResult, error) {
	totals, err := v.store.PeriodTotals(ctx, companyID)
	if err != nil {
		return nil, err
	}

	results := make([]*ValidationResult, 0, len(totals))
	for _, pt := range totals {
		r := &ValidationResult{
			IsValid:        pt.Total == 0,
			ValidationType: "trial_balance_zero_sum",
			PeriodDate:     FormatDate(pt.PeriodDate),
			Timestamp:      time.Now(),
			Details: map[string]any{
				"entries":     pt.Entries,
				"total_cents": pt.Total,
			},
		}
		if r.IsValid {
			r.Message = "trial balance nets to zero"
		} else {
			r.Message = fmt.Sprintf("trial balance is out of balance by %d cents", pt.Total)
		}
		results = append(results, r)
	}
	return results, nil
}

// ValidateMappingCompleteness reports unmapped active accounts with their
// balance as of asOf.
func (v *Validator) ValidateMappingCompleteness(ctx context.Context, companyID string, asOf time.Time) (*ValidationResult, error) {
	unmapped, err := v.store.ListUnmapped(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	var residual int64
	numbers := make([]string, 0, len(unmapped))
	for _, u := range unmapped {
		residual += u.BalanceCents
		numbers = append(numbers, u.ImportAccountNumber)
	}

	r := &ValidationResult{
		IsValid:        len(unmapped) == 0,
		ValidationType: "mapping_completeness",
		PeriodDate:     FormatDate(asOf),
		Timestamp:      time.Now(),
		Details: map[string]any{
			"unmapped_accounts": numbers,
			"unmapped_cents":    residual,
		},
	}
	if r.IsValid {
		r.Message = "all active accounts are mapped"
	} else {
		r.Message = fmt.Sprintf("%d active accounts are unmapped", len(unmapped))
	}
	return r, nil
}

// ComprehensiveValidation runs every check for a company.
func (v *Validator) ComprehensiveValidation(ctx context.Context, companyID string, asOf time.Time) ([]*ValidationResult, error) {
	results, err := v.ValidatePeriodBalances(ctx, companyID)
	if err != nil {
		return nil, err
	}
	mapping, err := v.ValidateMappingCompleteness(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	return append(results, mapping), nil
}
