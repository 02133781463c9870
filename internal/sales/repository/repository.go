package repository

import (
	"github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) repository.Repository[domain.Sale] {
	return repository.ProvideStore[domain.Sale](db)
}
