package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/observability/metrics"
	"github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/smallbiznis/storecogs/pkg/db/option"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    repository.Repository[domain.Store]
	Imports importlogdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    repository.Repository[domain.Store]
	imports importlogdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("storedir.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		imports: p.Imports,
		metrics: p.Metrics,
	}
}

// Replace swaps the whole directory for the uploaded sheet in one
// transaction. Rows repeating an earlier store number are dropped.
func (s *Service) Replace(ctx context.Context, req domain.ReplaceRequest) (domain.ReplaceResponse, error) {
	if len(req.Rows) == 0 {
		return domain.ReplaceResponse{}, domain.ErrEmptySheet
	}

	started := time.Now()
	batch, err := s.imports.Begin(ctx, importlogdomain.BeginRequest{
		Dataset:  importlogdomain.DatasetStores,
		FileName: req.FileName,
		RowCount: len(req.Rows),
	})
	if err != nil {
		return domain.ReplaceResponse{}, err
	}

	now := s.clock.Now()
	seen := make(map[string]struct{}, len(req.Rows))
	stores := make([]*domain.Store, 0, len(req.Rows))
	for _, row := range req.Rows {
		var store domain.Store
		tabular.MapRow(row, domain.Schema, &store)
		if store.StoreNumber != "" {
			if _, dup := seen[store.StoreNumber]; dup {
				continue
			}
			seen[store.StoreNumber] = struct{}{}
		}
		store.ID = s.genID.Generate()
		store.FileName = strings.TrimSpace(req.FileName)
		store.CreatedAt = now
		store.UpdatedAt = now
		stores = append(stores, &store)
	}
	skipped := len(req.Rows) - len(stores)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)
		if _, err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		return repo.BatchCreate(ctx, stores)
	})

	status := importlogdomain.StatusCompleted
	if err != nil {
		status = importlogdomain.StatusFailed
	}
	finish := importlogdomain.FinishRequest{Status: status, Skipped: skipped}
	if err == nil {
		finish.Inserted = len(stores)
	}
	if ferr := s.imports.Finish(context.WithoutCancel(ctx), batch.ID, finish); ferr != nil {
		s.log.Warn("failed to finish import batch", zap.String("batch_id", batch.ID), zap.Error(ferr))
	}
	s.metrics.RecordIngestBatch(ctx, string(importlogdomain.DatasetStores), string(status), time.Since(started))
	if err != nil {
		return domain.ReplaceResponse{}, err
	}
	s.metrics.RecordIngestRows(ctx, string(importlogdomain.DatasetStores), "inserted", len(stores))

	s.log.Info("store directory replaced",
		zap.String("batch_id", batch.ID),
		zap.Int("stores", len(stores)),
		zap.Int("skipped", skipped),
	)

	out := make([]domain.Store, 0, len(stores))
	for _, store := range stores {
		out = append(out, *store)
	}
	return domain.ReplaceResponse{BatchID: batch.ID, Count: len(out), Stores: out}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Store, error) {
	items, err := s.repo.Find(ctx, nil, option.WithOrder("created_at desc, id desc"))
	if err != nil {
		return nil, err
	}

	stores := make([]domain.Store, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		stores = append(stores, *item)
	}
	return stores, nil
}

func (s *Service) GetByNumber(ctx context.Context, storeNumber string) (domain.Store, error) {
	storeNumber = strings.TrimSpace(storeNumber)
	if storeNumber == "" {
		return domain.Store{}, domain.ErrInvalidStoreNumber
	}

	item, err := s.repo.FindOne(ctx, &domain.Store{StoreNumber: storeNumber}, option.WithOrder("created_at desc"))
	if err != nil {
		return domain.Store{}, err
	}
	if item == nil {
		return domain.Store{}, domain.ErrNotFound
	}
	return *item, nil
}
