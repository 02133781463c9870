package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/storecogs/internal/tabular"
)

type ReplaceRequest struct {
	FileName string
	Rows     []tabular.Row
}

type ReplaceResponse struct {
	BatchID string  `json:"batch_id"`
	Count   int     `json:"count"`
	Stores  []Store `json:"stores"`
}

type Service interface {
	Replace(ctx context.Context, req ReplaceRequest) (ReplaceResponse, error)
	List(ctx context.Context) ([]Store, error)
	GetByNumber(ctx context.Context, storeNumber string) (Store, error)
}

var (
	ErrEmptySheet         = errors.New("empty_sheet")
	ErrInvalidStoreNumber = errors.New("invalid_store_number")
	ErrNotFound           = errors.New("not_found")
)
