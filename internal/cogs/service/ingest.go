package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/lock"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	obslogger "github.com/smallbiznis/storecogs/internal/observability/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const dataset = string(importlogdomain.DatasetCogs)

// Ingest reconciles every row of one uploaded sheet against the stored
// reports. Rows are processed in order under the ingest lock; new reports
// receive Sr values continuing from the pre-batch maximum.
//
// A row that fails to persist is reported in the summary and skipped unless
// the ingest policy stops on row errors. When ctx is cancelled mid-batch the
// summary of the rows already committed is returned with
// ErrBatchInterrupted. The ingest lock is refreshed while the batch runs; if
// it is lost the batch stops the same way.
func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestSummary, error) {
	if len(req.Rows) == 0 {
		return domain.IngestSummary{}, domain.ErrEmptySheet
	}

	policy := s.policy.Get()
	if policy.MaxRows > 0 && len(req.Rows) > policy.MaxRows {
		return domain.IngestSummary{}, fmt.Errorf("%w: %d rows, limit %d", domain.ErrTooManyRows, len(req.Rows), policy.MaxRows)
	}

	ctx, span := s.tracer.Start(ctx, "cogs.ingest", trace.WithAttributes(
		attribute.String("file_name", req.FileName),
		attribute.Int("rows", len(req.Rows)),
	))
	defer span.End()

	lease, err := s.locker.Obtain(ctx, lockKey, policy.LockTTL())
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return domain.IngestSummary{}, fmt.Errorf("%w: %w", domain.ErrBatchBusy, err)
		}
		return domain.IngestSummary{}, err
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release ingest lock", zap.Error(err))
		}
	}()
	ctx, stopRefresh := lock.KeepAlive(ctx, lease, policy.LockTTL(), s.log)
	defer stopRefresh()

	batch, err := s.imports.Begin(ctx, importlogdomain.BeginRequest{
		Dataset:  importlogdomain.DatasetCogs,
		FileName: req.FileName,
		RowCount: len(req.Rows),
	})
	if err != nil {
		return domain.IngestSummary{}, err
	}
	ctx = obscontext.WithBatchID(ctx, batch.ID)
	log := obslogger.WithContext(ctx, s.log)
	span.SetAttributes(attribute.String("batch_id", batch.ID))

	started := time.Now()
	summary := domain.IngestSummary{BatchID: batch.ID}

	seed, err := s.repo.MaxSr(ctx, s.db)
	if err != nil {
		s.finish(ctx, summary, importlogdomain.StatusFailed, started)
		span.RecordError(err)
		span.SetStatus(codes.Error, "max sr lookup failed")
		return domain.IngestSummary{}, err
	}
	counter := NewSrCounter(seed)

	log.Info("cogs ingest started",
		zap.String("file_name", req.FileName),
		zap.Int("rows", len(req.Rows)),
		zap.Int64("sr_seed", seed),
	)

	var runErr error
	for i, row := range req.Rows {
		if ctx.Err() != nil {
			runErr = fmt.Errorf("%w after %d of %d rows: %w", domain.ErrBatchInterrupted, i, len(req.Rows), context.Cause(ctx))
			break
		}

		rowNum := rowNumber(req.RowNumbers, i)
		candidate, diags := domain.FromRow(row, req.FileName)
		for _, d := range diags {
			summary.Diagnostics = append(summary.Diagnostics, domain.RowDiagnostic{Row: rowNum, Diagnostic: d})
		}

		result, _, err := s.reconcile(ctx, counter, &candidate)
		if err != nil {
			if ctx.Err() != nil {
				runErr = fmt.Errorf("%w after %d of %d rows: %w", domain.ErrBatchInterrupted, i, len(req.Rows), context.Cause(ctx))
				break
			}

			summary.Skipped++
			summary.Errors = append(summary.Errors, domain.RowError{
				Row:         rowNum,
				StoreNumber: candidate.StoreNumber,
				WeekPeriod:  candidate.WeekPeriod,
				Period:      candidate.Period,
				Message:     err.Error(),
			})
			log.Warn("cogs row skipped", zap.Int("row", rowNum), zap.Error(err))

			if policy.StopOnRowError {
				runErr = fmt.Errorf("%w at row %d: %w", domain.ErrBatchAborted, rowNum, err)
				break
			}
			continue
		}

		switch result {
		case outcomeInserted:
			summary.Inserted++
		case outcomeUpdated:
			summary.Updated++
		}
	}
	summary.Total = summary.Inserted + summary.Updated + summary.Skipped

	status := batchStatus(summary, runErr)
	s.finish(ctx, summary, status, started)

	log.Info("cogs ingest finished",
		zap.String("status", string(status)),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int64("sr_last", counter.Last()),
	)

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, string(status))
		return summary, runErr
	}
	return summary, nil
}

func (s *Service) finish(ctx context.Context, summary domain.IngestSummary, status importlogdomain.Status, started time.Time) {
	ctx = context.WithoutCancel(ctx)

	req := importlogdomain.FinishRequest{
		Status:   status,
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Skipped:  summary.Skipped,
	}
	if len(summary.Errors) > 0 {
		req.Errors = summary.Errors
	}
	if err := s.imports.Finish(ctx, summary.BatchID, req); err != nil {
		s.log.Warn("failed to finish import batch", zap.String("batch_id", summary.BatchID), zap.Error(err))
	}

	s.metrics.RecordIngestRows(ctx, dataset, outcomeInserted.String(), summary.Inserted)
	s.metrics.RecordIngestRows(ctx, dataset, outcomeUpdated.String(), summary.Updated)
	s.metrics.RecordIngestRows(ctx, dataset, "skipped", summary.Skipped)
	s.metrics.RecordIngestBatch(ctx, dataset, string(status), time.Since(started))
}

func batchStatus(summary domain.IngestSummary, runErr error) importlogdomain.Status {
	switch {
	case errors.Is(runErr, domain.ErrBatchInterrupted):
		return importlogdomain.StatusInterrupted
	case runErr != nil:
		return importlogdomain.StatusFailed
	case summary.Skipped > 0:
		return importlogdomain.StatusPartial
	default:
		return importlogdomain.StatusCompleted
	}
}

// rowNumber maps the i-th input row to its sheet row, falling back to the
// position after a single header row.
func rowNumber(numbers []int, i int) int {
	if i < len(numbers) && numbers[i] > 0 {
		return numbers[i]
	}
	return i + 2
}
