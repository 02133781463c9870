package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
)

type IngestRequest struct {
	FileName   string
	Rows       []tabular.Row
	RowNumbers []int
}

type RowDiagnostic struct {
	Row int `json:"row"`
	tabular.Diagnostic
}

type IngestResponse struct {
	BatchID     string          `json:"batch_id"`
	Count       int             `json:"count"`
	Diagnostics []RowDiagnostic `json:"diagnostics,omitempty"`
}

type CreateRequest struct {
	Values tabular.Row
}

// UpdateRequest changes only the fields present in Values.
type UpdateRequest struct {
	ID     string
	Values tabular.Row
}

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Items []Sale `json:"items"`
}

type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error)
	Create(ctx context.Context, req CreateRequest) (Sale, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (Sale, error)
	Update(ctx context.Context, req UpdateRequest) (Sale, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, w io.Writer) error
}

var (
	ErrEmptySheet   = errors.New("empty_sheet")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidDate  = errors.New("invalid_date")
	ErrInvalidValue = errors.New("invalid_value")
	ErrNotFound     = errors.New("not_found")
)
