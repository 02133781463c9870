package service

import (
	"context"
	"io"

	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
)

const exportSheet = "COGS Data"

// Export writes every stored report in Sr order as a single-sheet workbook.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	var rows [][]any
	err := s.repo.Each(ctx, s.db, func(r *domain.Report) error {
		rows = append(rows, domain.Schema.Values(r))
		return nil
	})
	if err != nil {
		return err
	}

	cols := make([]spreadsheet.Column, 0, len(domain.Schema))
	for _, f := range domain.Schema {
		cols = append(cols, spreadsheet.Column{Header: f.Name, Width: f.Width})
	}

	return spreadsheet.Write(w, exportSheet, cols, rows, spreadsheet.DefaultHeaderStyle)
}
