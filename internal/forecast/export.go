package forecast

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{
	"period",
	"revenue_cents", "cogs_cents", "gross_profit_cents", "opex_cents",
	"ebitda_cents", "ebit_cents", "tax_cents", "net_income_cents",
	"da_cents", "delta_wc_cents", "net_cash_from_operations_cents",
	"capex_cents", "net_cash_from_investing_cents", "net_cash_from_financing_cents",
	"net_change_in_cash_cents", "beginning_cash_cents", "ending_cash_cents",
	"net_wc_cents",
}

// WriteCSV writes one row per projection with a header.
func WriteCSV(w io.Writer, projections []Projection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range projections {
		values := []int64{
			p.RevenueCents, p.COGSCents, p.GrossProfitCents, p.OpexCents,
			p.EBITDACents, p.EBITCents, p.TaxCents, p.NetIncomeCents,
			p.DACents, p.DeltaWCCents, p.NetCashFromOperationsCents,
			p.CapexCents, p.NetCashFromInvestingCents, p.NetCashFromFinancingCents,
			p.NetChangeInCashCents, p.BeginningCashCents, p.EndingCashCents,
			p.NetWorkingCapitalCents,
		}
		record := make([]string, 0, len(values)+1)
		record = append(record, p.Period)
		for _, v := range values {
			record = append(record, strconv.FormatInt(v, 10))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
