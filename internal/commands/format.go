package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatCents renders integer cents in the company's currency.
func formatCents(cents int64, currency string) string {
	return money.New(cents, currency).Display()
}

// parseAmount reads a major-unit amount such as "1250.50" into cents.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return cents.IntPart(), nil
}

// parsePercent reads "5", "5%" or "2.25%" into basis points.
func parsePercent(s string) (int64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	bps := d.Shift(2)
	if !bps.IsInteger() {
		return 0, fmt.Errorf("percentage %q is finer than one basis point", s)
	}
	return bps.IntPart(), nil
}

func formatBps(bps int64) string {
	return decimal.New(bps, -2).String() + "%"
}
