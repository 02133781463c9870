package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
)

type IngestRequest struct {
	FileName string
	Rows     []tabular.Row
	// RowNumbers optionally maps each entry of Rows to its sheet row.
	RowNumbers []int
}

// RowError explains why a row was skipped.
type RowError struct {
	Row         int    `json:"row"`
	StoreNumber string `json:"store_number,omitempty"`
	WeekPeriod  string `json:"week_period,omitempty"`
	Period      string `json:"period,omitempty"`
	Message     string `json:"message"`
}

// RowDiagnostic is a non-fatal coercion problem on a stored row.
type RowDiagnostic struct {
	Row int `json:"row"`
	tabular.Diagnostic
}

type IngestSummary struct {
	BatchID     string          `json:"batch_id"`
	Inserted    int             `json:"inserted"`
	Updated     int             `json:"updated"`
	Skipped     int             `json:"skipped"`
	Total       int             `json:"total"`
	Errors      []RowError      `json:"errors,omitempty"`
	Diagnostics []RowDiagnostic `json:"diagnostics,omitempty"`
}

type ListRequest struct {
	pagination.Pagination
	StoreNumber string
	WeekPeriod  string
	Period      string
	Search      string
}

type ListResponse struct {
	pagination.PageInfo
	Items []Report `json:"items"`
}

// SubmitRequest is a manually entered report. Values is keyed by field name
// with the same header matching as uploads. A non-empty ID updates that
// report instead of creating one.
type SubmitRequest struct {
	ID     string
	Values tabular.Row
}

type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (IngestSummary, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (Report, error)
	Submit(ctx context.Context, req SubmitRequest) (Report, error)
	Delete(ctx context.Context, id string) error
	StoreMapping(ctx context.Context, storeNumber string) (StoreMapping, error)
	StoreWeek(ctx context.Context, storeNumber, weekPeriod string) ([]Report, error)
	Export(ctx context.Context, w io.Writer) error
	WeeklyReportPDF(ctx context.Context, storeNumber, weekPeriod string) (io.Reader, error)
}

var (
	ErrEmptySheet        = errors.New("empty_sheet")
	ErrTooManyRows       = errors.New("too_many_rows")
	ErrBatchInterrupted  = errors.New("batch_interrupted")
	ErrBatchAborted      = errors.New("batch_aborted")
	ErrBatchBusy         = errors.New("batch_busy")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStore      = errors.New("invalid_store_number")
	ErrInvalidWeek       = errors.New("invalid_week")
	ErrInvalidWeekPeriod = errors.New("invalid_week_period")
	ErrNotFound          = errors.New("not_found")
	ErrDuplicateKey      = errors.New("duplicate_natural_key")
)
