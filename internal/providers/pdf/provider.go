package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateStoreWeek(ctx context.Context, data StoreWeekData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateStoreWeek(ctx context.Context, data StoreWeekData) (io.Reader, error) {
	return nil, nil
}
