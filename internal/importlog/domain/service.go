package domain

import (
	"context"
	"errors"
	"time"
)

type BeginRequest struct {
	Dataset  Dataset
	FileName string
	RowCount int
}

type FinishRequest struct {
	Status   Status
	Inserted int
	Updated  int
	Skipped  int
	// Errors is stored as JSON. Nil stores nothing.
	Errors any
}

type ListRequest struct {
	Dataset Dataset
	Limit   int
}

type Service interface {
	Begin(ctx context.Context, req BeginRequest) (Batch, error)
	Finish(ctx context.Context, id string, req FinishRequest) error
	List(ctx context.Context, req ListRequest) ([]Batch, error)
	// MarkStale closes batches still running that started before cutoff
	// as interrupted. It returns the number of batches closed.
	MarkStale(ctx context.Context, cutoff time.Time) (int, error)
}

var (
	ErrInvalidDataset = errors.New("invalid_dataset")
	ErrNotFound       = errors.New("not_found")
)
