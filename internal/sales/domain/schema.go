package domain

import (
	"github.com/smallbiznis/storecogs/internal/tabular"
)

const dateLayout = "1/2/2006"

func number(name string, ptr func(*Sale) **float64, aliases ...string) tabular.Field[Sale] {
	return tabular.Field[Sale]{
		Name:    name,
		Kind:    tabular.KindNumber,
		Aliases: aliases,
		Width:   12,
		Set:     func(s *Sale, v tabular.Value) { *ptr(s) = v.Number },
		Get:     func(s *Sale) any { return *ptr(s) },
	}
}

// Schema is the sales sheet in export order. Export titles follow the
// spreadsheet the stores fill in.
var Schema = tabular.Schema[Sale]{
	{
		Name:  "Date",
		Kind:  tabular.KindDate,
		Width: 12,
		Set:   func(s *Sale, v tabular.Value) { s.Date = v.Time },
		Get: func(s *Sale) any {
			if s.Date == nil {
				return ""
			}
			return s.Date.UTC().Format(dateLayout)
		},
	},
	withTitle(number("Year2025", func(s *Sale) **float64 { return &s.Year2025 }, "Year"), "Year"),
	number("TaxableSale", func(s *Sale) **float64 { return &s.TaxableSale }),
	number("ExemptSale", func(s *Sale) **float64 { return &s.ExemptSale }),
	number("SalesTax", func(s *Sale) **float64 { return &s.SalesTax }),
	number("DeliveryTip", func(s *Sale) **float64 { return &s.DeliveryTip }),
	number("GrandTotal", func(s *Sale) **float64 { return &s.GrandTotal }),
	number("CashSales", func(s *Sale) **float64 { return &s.CashSales }),
	number("WordPay", func(s *Sale) **float64 { return &s.WordPay }),
	number("Amex", func(s *Sale) **float64 { return &s.Amex }),
	number("Doordash", func(s *Sale) **float64 { return &s.Doordash }),
	number("Grubhub", func(s *Sale) **float64 { return &s.Grubhub }),
	number("Ubereats", func(s *Sale) **float64 { return &s.Ubereats }, "Uber eats"),
	number("GiftCard", func(s *Sale) **float64 { return &s.GiftCard }),
	number("Total", func(s *Sale) **float64 { return &s.Total }),
	number("Difference", func(s *Sale) **float64 { return &s.Difference }),
	withWidth(number("DepositedCash", func(s *Sale) **float64 { return &s.DepositedCash }, "Deposited Cash TD Bank"), 18),
	number("Expense", func(s *Sale) **float64 { return &s.Expense }),
	withWidth(number("ActualCashPlusMinus", func(s *Sale) **float64 { return &s.ActualCashPlusMinus }, "Actual Cash +/-"), 18),
}

func withTitle(f tabular.Field[Sale], title string) tabular.Field[Sale] {
	f.Title = title
	return f
}

func withWidth(f tabular.Field[Sale], width float64) tabular.Field[Sale] {
	f.Width = width
	return f
}

// FromRow maps a raw sheet or request row onto a sale. Total falls back to
// GrandTotal.
func FromRow(row tabular.Row) (Sale, []tabular.Diagnostic) {
	var s Sale
	diags := tabular.MapRow(row, Schema, &s)
	s.FillTotal()
	return s, diags
}
