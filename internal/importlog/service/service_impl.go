package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/pkg/db/option"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultListLimit = 50
	staleSweepLimit  = 200
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	Repo  repository.Repository[domain.Batch]
}

type Service struct {
	log   *zap.Logger
	clock clock.Clock
	repo  repository.Repository[domain.Batch]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("importlog.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Begin(ctx context.Context, req domain.BeginRequest) (domain.Batch, error) {
	if !validDataset(req.Dataset) {
		return domain.Batch{}, domain.ErrInvalidDataset
	}

	now := s.clock.Now()
	batch := domain.Batch{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Dataset:   req.Dataset,
		FileName:  strings.TrimSpace(req.FileName),
		Status:    domain.StatusRunning,
		RowCount:  req.RowCount,
		StartedAt: now,
	}
	if err := s.repo.Create(ctx, &batch); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func (s *Service) Finish(ctx context.Context, id string, req domain.FinishRequest) error {
	existing, err := s.repo.FindOne(ctx, &domain.Batch{ID: id})
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	finishedAt := s.clock.Now()
	updates := map[string]any{
		"status":      req.Status,
		"inserted":    req.Inserted,
		"updated":     req.Updated,
		"skipped":     req.Skipped,
		"finished_at": finishedAt,
	}
	if req.Errors != nil {
		raw, err := json.Marshal(req.Errors)
		if err != nil {
			return err
		}
		updates["errors"] = datatypes.JSON(raw)
	}

	return s.repo.Update(ctx, id, updates)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Batch, error) {
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}

	filter := &domain.Batch{}
	if req.Dataset != "" {
		if !validDataset(req.Dataset) {
			return nil, domain.ErrInvalidDataset
		}
		filter.Dataset = req.Dataset
	}

	items, err := s.repo.Find(ctx, filter,
		option.WithOrder("started_at desc, id desc"),
		option.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Batch, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) MarkStale(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.repo.Find(ctx, &domain.Batch{Status: domain.StatusRunning},
		option.WithWhere("started_at < ?", cutoff),
		option.WithOrder("started_at asc"),
		option.WithLimit(staleSweepLimit),
	)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	closed := 0
	for _, batch := range stale {
		err := s.repo.Update(ctx, batch.ID, map[string]any{
			"status":      domain.StatusInterrupted,
			"finished_at": now,
		})
		if err != nil {
			return closed, err
		}
		s.log.Warn("closed stale import batch",
			zap.String("batch_id", batch.ID),
			zap.String("dataset", string(batch.Dataset)),
			zap.Time("started_at", batch.StartedAt),
		)
		closed++
	}
	return closed, nil
}

func validDataset(d domain.Dataset) bool {
	switch d {
	case domain.DatasetCogs, domain.DatasetStores, domain.DatasetSales:
		return true
	default:
		return false
	}
}
