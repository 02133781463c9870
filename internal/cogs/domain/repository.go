package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	StoreNumber string
	WeekPeriod  string
	Period      string
	Search      string
}

type Repository interface {
	FindByNaturalKey(ctx context.Context, db *gorm.DB, key NaturalKey) (*Report, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Report, error)
	FindFirstByStoreNumber(ctx context.Context, db *gorm.DB, storeNumber string) (*Report, error)
	MaxSr(ctx context.Context, db *gorm.DB) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, report *Report) error
	Update(ctx context.Context, db *gorm.DB, report *Report) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Report, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	// Each streams every report in Sr order.
	Each(ctx context.Context, db *gorm.DB, fn func(*Report) error) error
}
