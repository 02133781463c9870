package repository

import (
	"github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) repository.Repository[domain.Store] {
	return repository.ProvideStore[domain.Store](db)
}
