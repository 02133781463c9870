package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrNoLines = errors.New("store week report has no lines")

// StoreWeekData is a pre-formatted weekly summary for one store. All values
// are rendered as given.
type StoreWeekData struct {
	StoreNumber   string
	StoreName     string
	ARL           string
	ReportingHead string
	WeekPeriod    string
	GeneratedAt   string

	Lines []StoreWeekLine
}

type StoreWeekLine struct {
	Sr                  string
	Period              string
	Week                string
	DateRange           string
	Sales2025           string
	Sales2024           string
	CustomerCount2025   string
	TotalFoodCost       string
	FoodCostPercent     string
	Wages               string
	WagesPercent        string
	FoodAndLaborPercent string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

var lineHeader = []struct {
	label string
	size  int
}{
	{"Sr", 1},
	{"Period", 1},
	{"Week", 1},
	{"Dates", 2},
	{"Sales 2025", 1},
	{"Sales 2024", 1},
	{"Customers", 1},
	{"Food cost", 1},
	{"Food %", 1},
	{"Wages", 1},
	{"Wages %", 1},
}

func (p *PDFProvider) GenerateStoreWeek(ctx context.Context, data StoreWeekData) (io.Reader, error) {
	if len(data.Lines) == 0 {
		return nil, ErrNoLines
	}

	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Weekly COGS Report", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Store: "+data.StoreNumber+" "+data.StoreName, props.Text{Style: fontstyle.Bold}),
			text.New("ARL: "+data.ARL, props.Text{Top: 6}),
			text.New("Reporting head: "+data.ReportingHead, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Week period: "+data.WeekPeriod, props.Text{Align: align.Right}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 6, Align: align.Right}),
		),
	)

	cols := make([]core.Col, 0, len(lineHeader))
	for _, h := range lineHeader {
		cols = append(cols, text.NewCol(h.size, h.label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center}))
	}
	m.AddRow(8, cols...)
	m.AddRow(2, line.NewCol(12))

	for _, l := range data.Lines {
		cells := []string{
			l.Sr, l.Period, l.Week, l.DateRange,
			l.Sales2025, l.Sales2024, l.CustomerCount2025,
			l.TotalFoodCost, l.FoodCostPercent, l.Wages, l.WagesPercent,
		}
		cols := make([]core.Col, 0, len(cells))
		for i, c := range cells {
			a := align.Right
			if i < 4 {
				a = align.Left
			}
			cols = append(cols, text.NewCol(lineHeader[i].size, c, props.Text{Size: 8, Align: a}))
		}
		m.AddRow(7, cols...)
	}

	m.AddRow(2, line.NewCol(12))

	last := data.Lines[len(data.Lines)-1]
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Food & labor %", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, last.FoodAndLaborPercent, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
