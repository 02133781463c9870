package repository

import (
	"github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) repository.Repository[domain.Batch] {
	return repository.ProvideStore[domain.Batch](db)
}
