package coa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChartIsValid(t *testing.T) {
	chart := DefaultChart()
	require.Len(t, chart, 12)

	seen := map[string]bool{}
	for _, a := range chart {
		require.NoError(t, a.Validate())
		assert.False(t, seen[a.Code], "duplicate code %s", a.Code)
		seen[a.Code] = true
	}
}

func TestCodesValidate(t *testing.T) {
	chart := DefaultChart()

	tests := []struct {
		name    string
		codes   Codes
		wantErr string
	}{
		{name: "defaults", codes: DefaultCodes()},
		{name: "missing cash", codes: Codes{Cash: "9999", RetainedEarnings: "3500"}, wantErr: "not found"},
		{name: "cash not asset", codes: Codes{Cash: "2000", RetainedEarnings: "3500"}, wantErr: "want ASSET"},
		{name: "missing retained earnings", codes: Codes{Cash: "1000", RetainedEarnings: "3999"}, wantErr: "not found"},
		{name: "retained earnings not equity", codes: Codes{Cash: "1000", RetainedEarnings: "4000"}, wantErr: "want EQUITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.codes.Validate(chart)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMasterAccountValidate(t *testing.T) {
	a := MasterAccount{Code: "7000", Name: "Other", Category: "INCOME", CashFlowCategory: Operating, NormalBalance: Credit}
	assert.ErrorContains(t, a.Validate(), "invalid category")

	a.Category = Revenue
	a.CashFlowCategory = "OTHER"
	assert.ErrorContains(t, a.Validate(), "invalid cash flow category")

	a.CashFlowCategory = Operating
	assert.NoError(t, a.Validate())
}
