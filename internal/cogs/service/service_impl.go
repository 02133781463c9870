package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/config"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/lock"
	"github.com/smallbiznis/storecogs/internal/observability/metrics"
	"github.com/smallbiznis/storecogs/internal/providers/pdf"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lockKey serializes every writer that assigns Sr values.
const lockKey = "storecogs:ingest:cogs"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Locker  lock.Locker
	Policy  *config.IngestPolicyHolder
	Imports importlogdomain.Service
	Metrics *metrics.Metrics       `optional:"true"`
	Stores  storedirdomain.Service `optional:"true"`
	PDF     pdf.Provider           `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	locker  lock.Locker
	policy  *config.IngestPolicyHolder
	imports importlogdomain.Service
	metrics *metrics.Metrics
	stores  storedirdomain.Service
	pdf     pdf.Provider
	tracer  trace.Tracer
}

func New(p Params) domain.Service {
	policy := p.Policy
	if policy == nil {
		policy = config.NewStaticIngestPolicy(config.DefaultIngestPolicy())
	}
	renderer := p.PDF
	if renderer == nil {
		renderer = pdf.New()
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("cogs.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		locker:  p.Locker,
		policy:  policy,
		imports: p.Imports,
		metrics: p.Metrics,
		stores:  p.Stores,
		pdf:     renderer,
		tracer:  otel.Tracer("storecogs/cogs"),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		StoreNumber: strings.TrimSpace(req.StoreNumber),
		WeekPeriod:  strings.TrimSpace(req.WeekPeriod),
		Period:      strings.TrimSpace(req.Period),
		Search:      strings.TrimSpace(req.Search),
	}
	page := req.Pagination.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, err
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	reports := make([]domain.Report, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reports = append(reports, *item)
	}

	return domain.ListResponse{
		PageInfo: page.Info(total),
		Items:    reports,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Report, error) {
	reportID, err := s.parseID(id)
	if err != nil {
		return domain.Report{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	if item == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	reportID, err := s.parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, reportID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("cogs report deleted", zap.String("id", reportID.String()))
	return nil
}

// StoreMapping returns the descriptive columns of a store, preferring the
// earliest stored report and falling back to the store directory.
func (s *Service) StoreMapping(ctx context.Context, storeNumber string) (domain.StoreMapping, error) {
	storeNumber = strings.TrimSpace(storeNumber)
	if storeNumber == "" {
		return domain.StoreMapping{}, domain.ErrInvalidStore
	}

	item, err := s.repo.FindFirstByStoreNumber(ctx, s.db, storeNumber)
	if err != nil {
		return domain.StoreMapping{}, err
	}
	if item != nil {
		return domain.StoreMapping{
			StoreNumber:   item.StoreNumber,
			StoreName:     item.StoreName,
			ARL:           item.ARL,
			ReportingHead: item.ReportingHead,
		}, nil
	}

	if s.stores == nil {
		return domain.StoreMapping{}, domain.ErrNotFound
	}
	store, err := s.stores.GetByNumber(ctx, storeNumber)
	if err != nil {
		if errors.Is(err, storedirdomain.ErrNotFound) {
			return domain.StoreMapping{}, domain.ErrNotFound
		}
		return domain.StoreMapping{}, err
	}
	return domain.StoreMapping{
		StoreNumber:   store.StoreNumber,
		StoreName:     store.StoreName,
		ARL:           store.ARL,
		ReportingHead: store.ReportingHead,
	}, nil
}

func (s *Service) StoreWeek(ctx context.Context, storeNumber, weekPeriod string) ([]domain.Report, error) {
	storeNumber = strings.TrimSpace(storeNumber)
	if storeNumber == "" {
		return nil, domain.ErrInvalidStore
	}
	weekPeriod = strings.TrimSpace(weekPeriod)
	if weekPeriod == "" {
		return nil, domain.ErrInvalidWeekPeriod
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		StoreNumber: storeNumber,
		WeekPeriod:  weekPeriod,
	}, pagination.Pagination{Page: 1, Limit: pagination.MaxLimit})
	if err != nil {
		return nil, err
	}

	reports := make([]domain.Report, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reports = append(reports, *item)
	}
	return reports, nil
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.ErrInvalidID
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
