package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffBalance,Account_Number,account_name,memo\n" +
		"-1000,4000,Product Revenue,x\n" +
		"\n" +
		"1000, 1000,\"Cash, operating\",\n"

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{AccountNumber: "4000", AccountName: "Product Revenue", Balance: "-1000", Line: 2}, rows[0])
	assert.Equal(t, Row{AccountNumber: "1000", AccountName: "Cash, operating", Balance: "1000", Line: 4}, rows[1])
}

func TestReadCSVLineNumbersSurviveBlankRows(t *testing.T) {
	in := "account_number,account_name,balance\n" +
		"1000,Cash,100\n" +
		"\n" +
		"\n" +
		"4000,Revenue,1.5\n"

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = Normalize(rows)
	var mr *MalformedRowError
	require.ErrorAs(t, err, &mr)
	assert.Equal(t, 5, mr.Row)
	assert.Equal(t, "balance", mr.Field)

	_, err = ReadCSV(strings.NewReader("account_number,account_name,balance\n\n1000,Cash\n"))
	require.ErrorAs(t, err, &mr)
	assert.Equal(t, 3, mr.Row)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty file"},
		{"missing column", "account_number,balance\n1000,5\n", `missing column "account_name"`},
		{"ragged row", "account_number,account_name,balance\n1000,Cash\n", "row 2:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRow)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
