package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnreadable   = errors.New("unreadable_spreadsheet")
	ErrSheetMissing = errors.New("sheet_not_found")
	ErrTooManyRows  = errors.New("too_many_rows")
)

// ReadOptions narrows what Read loads from a workbook.
type ReadOptions struct {
	// SheetName selects a sheet by name. Empty means the first sheet.
	SheetName string
	// MaxRows bounds the number of data rows. Zero means unbounded.
	MaxRows int
}

// Sheet is the tabular content of one worksheet. Rows excludes the header
// row and fully blank rows. RowNumbers holds the 1-based sheet row of each
// entry in Rows.
type Sheet struct {
	Name       string
	Headers    []string
	Rows       []tabular.Row
	RowNumbers []int
}

// Read parses an xlsx workbook. The first row of the selected sheet is the
// header row; columns with a blank header are ignored.
func Read(r io.Reader, opts ReadOptions) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	name := strings.TrimSpace(opts.SheetName)
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Sheet{}, ErrSheetMissing
		}
		name = sheets[0]
	} else if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return Sheet{}, fmt.Errorf("%w: %s", ErrSheetMissing, name)
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	sheet := Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}

	sheet.Headers = rows[0]
	for i, cols := range rows[1:] {
		row := buildRow(sheet.Headers, cols)
		if row.Blank() {
			continue
		}
		if opts.MaxRows > 0 && len(sheet.Rows) >= opts.MaxRows {
			return Sheet{}, fmt.Errorf("%w: limit %d", ErrTooManyRows, opts.MaxRows)
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.RowNumbers = append(sheet.RowNumbers, i+2)
	}

	return sheet, nil
}

func buildRow(headers, cols []string) tabular.Row {
	row := make(tabular.Row, 0, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		var value any
		if i < len(cols) && strings.TrimSpace(cols[i]) != "" {
			value = cols[i]
		}
		row = append(row, tabular.Cell{Header: h, Value: value})
	}
	return row
}
