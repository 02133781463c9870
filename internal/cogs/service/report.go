package service

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/providers/pdf"
)

// WeeklyReportPDF renders the stored reports of one store and week period.
func (s *Service) WeeklyReportPDF(ctx context.Context, storeNumber, weekPeriod string) (io.Reader, error) {
	reports, err := s.StoreWeek(ctx, storeNumber, weekPeriod)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, domain.ErrNotFound
	}

	first := reports[0]
	data := pdf.StoreWeekData{
		StoreNumber:   first.StoreNumber,
		StoreName:     first.StoreName,
		ARL:           first.ARL,
		ReportingHead: first.ReportingHead,
		WeekPeriod:    first.WeekPeriod,
		GeneratedAt:   s.clock.Now().Format("2006-01-02 15:04 MST"),
	}
	for _, r := range reports {
		data.Lines = append(data.Lines, pdf.StoreWeekLine{
			Sr:                  strconv.FormatInt(r.Sr, 10),
			Period:              r.Period,
			Week:                r.Week,
			DateRange:           dateRange(r.DateFrom, r.To),
			Sales2025:           money(r.Sales2025),
			Sales2024:           money(r.Sales2024),
			CustomerCount2025:   whole(r.CustomerCount2025),
			TotalFoodCost:       money(r.TotalFoodCost),
			FoodCostPercent:     money(r.FoodCostpercent),
			Wages:               money(r.Wages),
			WagesPercent:        money(r.Wagespercent),
			FoodAndLaborPercent: money(r.FoodAndLaborPercent),
		})
	}

	return s.pdf.GenerateStoreWeek(ctx, data)
}

func dateRange(from, to string) string {
	switch {
	case from == "":
		return to
	case to == "":
		return from
	default:
		return from + " - " + to
	}
}

func money(v *float64) string {
	if v == nil {
		return ""
	}
	return groupThousands(decimal.NewFromFloat(*v).StringFixed(2))
}

func whole(v *float64) string {
	if v == nil {
		return ""
	}
	return groupThousands(decimal.NewFromFloat(*v).Round(0).String())
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
