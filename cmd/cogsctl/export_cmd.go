package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/jobmetrics"
	"github.com/spf13/cobra"
)

type exportOutput struct {
	Command    string `json:"command"`
	Dataset    string `json:"dataset"`
	Out        string `json:"out"`
	DurationMS int64  `json:"duration_ms"`
}

func newExportCmd() *cobra.Command {
	var (
		out     string
		dataset string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cogs or sales dataset to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := parseDataset(dataset)
			if err != nil {
				return err
			}
			if ds == importlogdomain.DatasetStores {
				return fmt.Errorf("export of %q is not supported", ds)
			}

			return withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}

				start := time.Now()
				var export func(context.Context, io.Writer) error = svc.Cogs.Export
				if ds == importlogdomain.DatasetSales {
					export = svc.Sales.Export
				}
				jm := jobmetrics.New(svc.Pusher)
				err = export(ctx, f)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				jm.Finish(string(ds), "export", time.Since(start), time.Now(), err)
				if pushErr := jm.Push(ctx); pushErr != nil {
					fmt.Fprintf(os.Stderr, "push job metrics: %v\n", pushErr)
				}
				if err != nil {
					_ = os.Remove(out)
					return err
				}

				return writeJSON(exportOutput{
					Command:    "export",
					Dataset:    string(ds),
					Out:        out,
					DurationMS: time.Since(start).Milliseconds(),
				})
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "cogs.xlsx", "Destination .xlsx path")
	cmd.Flags().StringVar(&dataset, "dataset", string(importlogdomain.DatasetCogs), "Dataset to export: cogs or sales")
	return cmd
}
