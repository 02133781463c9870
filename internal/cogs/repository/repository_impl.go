package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/pkg/db/option"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
	"gorm.io/gorm"
)

const eachBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByNaturalKey(ctx context.Context, db *gorm.DB, key domain.NaturalKey) (*domain.Report, error) {
	return first(db.WithContext(ctx).
		Where("store_number = ? AND week_period = ? AND period = ?", key.StoreNumber, key.WeekPeriod, key.Period))
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Report, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindFirstByStoreNumber(ctx context.Context, db *gorm.DB, storeNumber string) (*domain.Report, error) {
	return first(db.WithContext(ctx).Where("store_number = ?", storeNumber).Order("sr asc"))
}

func (r *repo) MaxSr(ctx context.Context, db *gorm.DB) (int64, error) {
	var maxSr int64
	err := db.WithContext(ctx).
		Model(&domain.Report{}).
		Select("COALESCE(MAX(sr), 0)").
		Scan(&maxSr).Error
	return maxSr, err
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Create(report).Error
}

// Update writes every column except id, sr and created_at, including nil
// numbers.
func (r *repo) Update(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).
		Model(report).
		Select("*").
		Omit("id", "sr", "created_at").
		Updates(report).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Report{})
	return res.RowsAffected > 0, res.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Report, error) {
	var reports []*domain.Report
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Report{}), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("sr asc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var count int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Report{}), filter).Count(&count).Error
	return count, err
}

func (r *repo) Each(ctx context.Context, db *gorm.DB, fn func(*domain.Report) error) error {
	var last int64
	for {
		var batch []*domain.Report
		err := db.WithContext(ctx).
			Where("sr > ?", last).
			Order("sr asc").
			Limit(eachBatchSize).
			Find(&batch).Error
		if err != nil {
			return err
		}
		for _, report := range batch {
			if err := fn(report); err != nil {
				return err
			}
			last = report.Sr
		}
		if len(batch) < eachBatchSize {
			return nil
		}
	}
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.StoreNumber != "" {
		stmt = stmt.Where("store_number = ?", filter.StoreNumber)
	}
	if filter.WeekPeriod != "" {
		stmt = stmt.Where("week_period = ?", filter.WeekPeriod)
	}
	if filter.Period != "" {
		stmt = stmt.Where("period = ?", filter.Period)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"(LOWER(store_number) LIKE ? OR LOWER(store_name) LIKE ? OR LOWER(arl) LIKE ? OR LOWER(reporting_head) LIKE ?)",
			like, like, like, like,
		)
	}
	return stmt
}

func first(stmt *gorm.DB) (*domain.Report, error) {
	var report domain.Report
	err := stmt.First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}
