package domain

import (
	"github.com/smallbiznis/storecogs/internal/tabular"
)

func text(name string, width float64, ptr func(*Report) *string) tabular.Field[Report] {
	return tabular.Field[Report]{
		Name:  name,
		Kind:  tabular.KindString,
		Width: width,
		Set:   func(r *Report, v tabular.Value) { *ptr(r) = v.Text },
		Get:   func(r *Report) any { return *ptr(r) },
	}
}

func number(name string, width float64, ptr func(*Report) **float64) tabular.Field[Report] {
	return tabular.Field[Report]{
		Name:  name,
		Kind:  tabular.KindNumber,
		Width: width,
		Set:   func(r *Report, v tabular.Value) { *ptr(r) = v.Number },
		Get:   func(r *Report) any { return *ptr(r) },
	}
}

// Schema is the fixed, ordered COGS field table. Export writes columns in
// this order with these widths.
var Schema = tabular.Schema[Report]{
	{
		Name:    "Sr",
		Kind:    tabular.KindNumber,
		Width:   6,
		Managed: true,
		Get:     func(r *Report) any { return r.Sr },
	},
	text("WeekPeriod", 20, func(r *Report) *string { return &r.WeekPeriod }),
	text("Period", 15, func(r *Report) *string { return &r.Period }),
	text("Week", 10, func(r *Report) *string { return &r.Week }),
	text("DateFrom", 15, func(r *Report) *string { return &r.DateFrom }),
	text("To", 15, func(r *Report) *string { return &r.To }),
	text("StoreNumber", 20, func(r *Report) *string { return &r.StoreNumber }),
	text("StoreName", 25, func(r *Report) *string { return &r.StoreName }),
	text("ARL", 15, func(r *Report) *string { return &r.ARL }),
	text("ReportingHead", 20, func(r *Report) *string { return &r.ReportingHead }),
	number("Sales2025", 15, func(r *Report) **float64 { return &r.Sales2025 }),
	number("Sales2024", 15, func(r *Report) **float64 { return &r.Sales2024 }),
	number("CustomerCount2025", 20, func(r *Report) **float64 { return &r.CustomerCount2025 }),
	number("CustomerCount2024", 20, func(r *Report) **float64 { return &r.CustomerCount2024 }),
	number("FoodcostBlueline", 18, func(r *Report) **float64 { return &r.FoodcostBlueline }),
	number("Pepsico", 12, func(r *Report) **float64 { return &r.Pepsico }),
	number("TotalFoodCost", 18, func(r *Report) **float64 { return &r.TotalFoodCost }),
	number("FoodCostpercent", 18, func(r *Report) **float64 { return &r.FoodCostpercent }),
	number("FourWeekFoodCost", 20, func(r *Report) **float64 { return &r.FourWeekFoodCost }),
	number("Wages", 15, func(r *Report) **float64 { return &r.Wages }),
	number("Wagespercent", 18, func(r *Report) **float64 { return &r.Wagespercent }),
	number("FourWeekWageCost", 20, func(r *Report) **float64 { return &r.FourWeekWageCost }),
	number("FoodAndLaborPercent", 22, func(r *Report) **float64 { return &r.FoodAndLaborPercent }),
	number("FourWeekAverageFoodAndLabor", 25, func(r *Report) **float64 { return &r.FourWeekAverageFoodAndLabor }),
}

// FromRow maps a raw sheet row onto a candidate report. Sr is never read
// from input.
func FromRow(row tabular.Row, fileName string) (Report, []tabular.Diagnostic) {
	var r Report
	diags := tabular.MapRow(row, Schema, &r)
	r.FileName = fileName
	return r, diags
}

// ApplyDefaults replaces nil numbers with zero, the declared default used for
// manually entered reports.
func ApplyDefaults(r *Report) {
	for _, f := range Schema {
		if f.Managed || f.Kind != tabular.KindNumber {
			continue
		}
		if v, ok := f.Get(r).(*float64); ok && v == nil {
			z := 0.0
			f.Set(r, tabular.Value{Number: &z})
		}
	}
}
