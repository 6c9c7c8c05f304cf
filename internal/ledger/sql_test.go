package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/threestatement/internal/coa"
)

func TestRebind(t *testing.T) {
	q := "SELECT 1 WHERE a = ? AND b IN (?, ?)"
	assert.Equal(t, q, rebind(SQLite, q))
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b IN ($2, $3)", rebind(Postgres, q))
}

func TestSumQueryJoins(t *testing.T) {
	r := InceptionTo(MinDate)

	q, args := sumQuery("c1", r, Filter{})
	assert.NotContains(t, q, "account_mappings")
	assert.Len(t, args, 3)

	q, args = sumQuery("c1", r, Filter{Unmapped: true})
	assert.Contains(t, q, "LEFT JOIN account_mappings")
	assert.Contains(t, q, "m.id IS NULL")
	assert.Len(t, args, 3)

	q, args = sumQuery("c1", r, Filter{
		Categories:   []coa.Category{coa.Asset, coa.Liability},
		CashFlow:     coa.Operating,
		ExcludeCodes: []string{"1000"},
	})
	assert.Contains(t, q, "JOIN master_accounts")
	assert.Contains(t, q, "ma.category IN (?, ?)")
	assert.Contains(t, q, "ma.account_code NOT IN (?)")
	assert.Equal(t, []any{"c1", "0001-01-01", "0001-01-01", "ASSET", "LIABILITY", "OPERATING", "1000"}, args)
}

func TestDBDateScan(t *testing.T) {
	var d dbDate
	assert.NoError(t, d.Scan("2024-02-29"))
	assert.Equal(t, "2024-02-29", FormatDate(d.Time))

	assert.NoError(t, d.Scan([]byte("2024-03-31T00:00:00Z")))
	assert.Equal(t, "2024-03-31", FormatDate(d.Time))

	assert.NoError(t, d.Scan(nil))
	assert.False(t, d.Valid)
	assert.Nil(t, d.ptr())

	assert.Error(t, d.Scan(42))
}
