package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/storecogs/internal/clock"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/internal/observability/metrics"
	"github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/smallbiznis/storecogs/pkg/db/option"
	"github.com/smallbiznis/storecogs/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	exportSheet = "Sales"
	listOrder   = "created_at desc, table_index asc, id desc"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// manualSale holds the checks applied to hand-entered sales.
type manualSale struct {
	Date *time.Time `validate:"required"`
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    repository.Repository[domain.Sale]
	Imports importlogdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    repository.Repository[domain.Sale]
	imports importlogdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sales.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		imports: p.Imports,
		metrics: p.Metrics,
	}
}

// Ingest inserts every row of an uploaded sales sheet. Sales have no natural
// key, so re-uploading a sheet stores its rows again.
func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResponse, error) {
	if len(req.Rows) == 0 {
		return domain.IngestResponse{}, domain.ErrEmptySheet
	}

	started := time.Now()
	batch, err := s.imports.Begin(ctx, importlogdomain.BeginRequest{
		Dataset:  importlogdomain.DatasetSales,
		FileName: req.FileName,
		RowCount: len(req.Rows),
	})
	if err != nil {
		return domain.IngestResponse{}, err
	}

	now := s.clock.Now()
	fileName := strings.TrimSpace(req.FileName)
	resp := domain.IngestResponse{BatchID: batch.ID}
	sales := make([]*domain.Sale, 0, len(req.Rows))
	for i, row := range req.Rows {
		sale, diags := domain.FromRow(row)
		for _, d := range diags {
			resp.Diagnostics = append(resp.Diagnostics, domain.RowDiagnostic{Row: rowNumber(req.RowNumbers, i), Diagnostic: d})
		}
		sale.ID = s.genID.Generate()
		sale.FileName = fileName
		sale.TableIndex = i
		sale.CreatedAt = now
		sale.UpdatedAt = now
		sales = append(sales, &sale)
	}

	err = s.repo.BatchCreate(ctx, sales)

	finish := importlogdomain.FinishRequest{Status: importlogdomain.StatusCompleted, Inserted: len(sales)}
	if err != nil {
		finish = importlogdomain.FinishRequest{Status: importlogdomain.StatusFailed, Skipped: len(sales)}
	}
	if ferr := s.imports.Finish(context.WithoutCancel(ctx), batch.ID, finish); ferr != nil {
		s.log.Warn("failed to finish import batch", zap.String("batch_id", batch.ID), zap.Error(ferr))
	}
	s.metrics.RecordIngestBatch(ctx, string(importlogdomain.DatasetSales), string(finish.Status), time.Since(started))
	if err != nil {
		return domain.IngestResponse{}, err
	}
	s.metrics.RecordIngestRows(ctx, string(importlogdomain.DatasetSales), "inserted", len(sales))

	resp.Count = len(sales)
	s.log.Info("sales sheet ingested", zap.String("batch_id", batch.ID), zap.Int("rows", resp.Count))
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Sale, error) {
	sale, diags := domain.FromRow(req.Values)
	if err := checkValues(diags); err != nil {
		return domain.Sale{}, err
	}
	if err := validate.Struct(manualSale{Date: sale.Date}); err != nil {
		return domain.Sale{}, domain.ErrInvalidDate
	}

	now := s.clock.Now()
	sale.ID = s.genID.Generate()
	sale.CreatedAt = now
	sale.UpdatedAt = now
	if err := s.repo.Create(ctx, &sale); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	page := req.Pagination.Normalize()

	total, err := s.repo.Count(ctx, nil)
	if err != nil {
		return domain.ListResponse{}, err
	}

	items, err := s.repo.Find(ctx, nil,
		option.WithOrder(listOrder),
		option.ApplyPagination(page),
	)
	if err != nil {
		return domain.ListResponse{}, err
	}

	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sales = append(sales, *item)
	}
	return domain.ListResponse{PageInfo: page.Info(total), Items: sales}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return domain.Sale{}, err
	}

	item, err := s.repo.FindOne(ctx, &domain.Sale{ID: saleID})
	if err != nil {
		return domain.Sale{}, err
	}
	if item == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Sale, error) {
	existing, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	diags := tabular.MapRowPresent(req.Values, domain.Schema, &existing)
	if err := checkValues(diags); err != nil {
		return domain.Sale{}, err
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateAll(ctx, &existing, "id", "created_at"); err != nil {
		return domain.Sale{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	saleID, err := parseID(id)
	if err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, saleID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Export(ctx context.Context, w io.Writer) error {
	items, err := s.repo.Find(ctx, nil, option.WithOrder(listOrder))
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.Schema.Values(item))
	}

	titles := domain.Schema.Titles()
	cols := make([]spreadsheet.Column, 0, len(domain.Schema))
	for i, f := range domain.Schema {
		cols = append(cols, spreadsheet.Column{Header: titles[i], Width: f.Width})
	}

	return spreadsheet.Write(w, exportSheet, cols, rows, spreadsheet.DefaultHeaderStyle)
}

// checkValues rejects hand-entered values that could not be coerced.
func checkValues(diags []tabular.Diagnostic) error {
	for _, d := range diags {
		if d.Field == "Date" {
			return domain.ErrInvalidDate
		}
	}
	if len(diags) > 0 {
		return domain.ErrInvalidValue
	}
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
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

func rowNumber(numbers []int, i int) int {
	if i < len(numbers) && numbers[i] > 0 {
		return numbers[i]
	}
	return i + 2
}
