package repository

import (
	"context"

	"github.com/smallbiznis/storecogs/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for simple tables.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID any, resource any) error
	// UpdateAll writes every column of resource, zero values included,
	// except the omitted ones.
	UpdateAll(ctx context.Context, resource *T, omit ...string) error
	Delete(ctx context.Context, resourceID any) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
}
