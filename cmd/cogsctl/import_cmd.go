package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cogsdomain "github.com/smallbiznis/storecogs/internal/cogs/domain"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/jobmetrics"
	salesdomain "github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/spf13/cobra"
)

type importOutput struct {
	Command    string `json:"command"`
	Dataset    string `json:"dataset"`
	File       string `json:"file"`
	Sheet      string `json:"sheet"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
	Error      string `json:"error,omitempty"`
}

func newImportCmd() *cobra.Command {
	var (
		file    string
		dataset string
		sheet   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an xlsx workbook into the cogs, stores or sales dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := parseDataset(dataset)
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				policy := svc.Policy.Get()
				if sheet == "" {
					sheet = policy.SheetName
				}

				data, err := readSheet(file, spreadsheet.ReadOptions{SheetName: sheet, MaxRows: policy.MaxRows})
				if err != nil {
					return err
				}

				start := time.Now()
				jm := jobmetrics.New(svc.Pusher)
				result, runErr := runImport(ctx, svc, ds, filepath.Base(file), data)
				recordImport(jm, ds, result)
				jm.Finish(string(ds), "import", time.Since(start), time.Now(), runErr)
				if err := jm.Push(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "push job metrics: %v\n", err)
				}
				out := importOutput{
					Command:    "import",
					Dataset:    string(ds),
					File:       file,
					Sheet:      data.Name,
					DurationMS: time.Since(start).Milliseconds(),
					Result:     result,
				}
				if runErr != nil {
					out.Error = runErr.Error()
				}
				if err := writeJSON(out); err != nil {
					return err
				}
				return runErr
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the .xlsx workbook (required)")
	cmd.Flags().StringVar(&dataset, "dataset", string(importlogdomain.DatasetCogs), "Dataset to load: cogs, stores or sales")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default: ingest policy sheet, then the first sheet)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func parseDataset(v string) (importlogdomain.Dataset, error) {
	ds := importlogdomain.Dataset(strings.ToLower(strings.TrimSpace(v)))
	switch ds {
	case importlogdomain.DatasetCogs, importlogdomain.DatasetStores, importlogdomain.DatasetSales:
		return ds, nil
	default:
		return "", fmt.Errorf("invalid --dataset %q: %w", v, importlogdomain.ErrInvalidDataset)
	}
}

func readSheet(path string, opts spreadsheet.ReadOptions) (spreadsheet.Sheet, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return spreadsheet.Sheet{}, fmt.Errorf("%s: only .xlsx workbooks are supported", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return spreadsheet.Sheet{}, err
	}
	defer f.Close()
	return spreadsheet.Read(f, opts)
}

func runImport(ctx context.Context, svc services, ds importlogdomain.Dataset, fileName string, data spreadsheet.Sheet) (any, error) {
	switch ds {
	case importlogdomain.DatasetStores:
		return svc.Stores.Replace(ctx, storedirdomain.ReplaceRequest{FileName: fileName, Rows: data.Rows})
	case importlogdomain.DatasetSales:
		return svc.Sales.Ingest(ctx, salesdomain.IngestRequest{FileName: fileName, Rows: data.Rows, RowNumbers: data.RowNumbers})
	case importlogdomain.DatasetCogs:
		return svc.Cogs.Ingest(ctx, cogsdomain.IngestRequest{FileName: fileName, Rows: data.Rows, RowNumbers: data.RowNumbers})
	default:
		return nil, errors.New("unsupported dataset")
	}
}

func recordImport(jm *jobmetrics.JobMetrics, ds importlogdomain.Dataset, result any) {
	switch r := result.(type) {
	case cogsdomain.IngestSummary:
		jm.Rows(string(ds), "inserted", r.Inserted)
		jm.Rows(string(ds), "updated", r.Updated)
		jm.Rows(string(ds), "skipped", r.Skipped)
	case storedirdomain.ReplaceResponse:
		jm.Rows(string(ds), "inserted", r.Count)
	case salesdomain.IngestResponse:
		jm.Rows(string(ds), "inserted", r.Count)
	}
}
