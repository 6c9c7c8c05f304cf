package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	colAccountNumber = "account_number"
	colAccountName   = "account_name"
	colBalance       = "balance"
)

// ReadCSV lexes an upload with a header row naming account_number,
// account_name and balance in any order. Other columns are ignored. Each row
// records its line in the file, the header being line 1.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedRowError{Reason: "empty file"}
		}
		return nil, &MalformedRowError{Reason: fmt.Sprintf("reading header: %v", err)}
	}

	idx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, col := range []string{colAccountNumber, colAccountName, colBalance} {
		if _, ok := idx[col]; !ok {
			return nil, &MalformedRowError{Reason: fmt.Sprintf("missing column %q", col)}
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &MalformedRowError{Row: pe.StartLine, Reason: pe.Err.Error()}
			}
			return nil, &MalformedRowError{Reason: err.Error()}
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{
			AccountNumber: rec[idx[colAccountNumber]],
			AccountName:   rec[idx[colAccountName]],
			Balance:       rec[idx[colBalance]],
			Line:          line,
		})
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
