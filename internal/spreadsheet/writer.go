package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column is an exported column header with its display width.
type Column struct {
	Header string
	Width  float64
}

// HeaderStyle controls the look of the header row.
type HeaderStyle struct {
	Bold   bool
	Color  string
	Center bool
	Height float64
}

// DefaultHeaderStyle is a bold, red, centred header row.
var DefaultHeaderStyle = HeaderStyle{Bold: true, Color: "FF0000", Center: true, Height: 22}

// Write renders a single-sheet workbook to w: one header row followed by
// rows, each already in column order. Nil cells are left empty.
func Write(w io.Writer, sheet string, cols []Column, rows [][]any, style HeaderStyle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header
		if c.Width > 0 {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, name, name, c.Width); err != nil {
				return err
			}
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	if len(cols) > 0 {
		styleID, err := f.NewStyle(headerStyle(style))
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(cols), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
			return err
		}
		if style.Height > 0 {
			if err := f.SetRowHeight(sheet, 1, style.Height); err != nil {
				return err
			}
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func headerStyle(s HeaderStyle) *excelize.Style {
	st := &excelize.Style{
		Font: &excelize.Font{Bold: s.Bold, Color: s.Color},
	}
	if s.Center {
		st.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	}
	return st
}
