package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRow    = errors.New("malformed row")
	ErrOutOfBalance    = errors.New("trial balance out of balance")
	ErrCompanyNotFound = errors.New("company not found")
)

// MalformedRowError identifies the offending row (1-based) and field.
type MalformedRowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed upload: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// OutOfBalanceError carries the signed sum of a rejected upload in cents.
type OutOfBalanceError struct {
	Discrepancy int64
}

func (e *OutOfBalanceError) Error() string {
	return fmt.Sprintf("trial balance is out of balance by %d cents", e.Discrepancy)
}

func (e *OutOfBalanceError) Is(target error) bool { return target == ErrOutOfBalance }
