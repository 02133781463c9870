package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/cogs/repository"
	"github.com/smallbiznis/storecogs/internal/config"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	importlogrepo "github.com/smallbiznis/storecogs/internal/importlog/repository"
	importlogservice "github.com/smallbiznis/storecogs/internal/importlog/service"
	"github.com/smallbiznis/storecogs/internal/lock"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	repo    domain.Repository
	imports importlogdomain.Service
	clock   *clock.FakeClock
}

type fixtureOption func(*Params)

func withRepo(wrap func(domain.Repository) domain.Repository) fixtureOption {
	return func(p *Params) { p.Repo = wrap(p.Repo) }
}

func withPolicy(policy config.IngestPolicy) fixtureOption {
	return func(p *Params) { p.Policy = config.NewStaticIngestPolicy(policy) }
}

func withStores(stores storedirdomain.Service) fixtureOption {
	return func(p *Params) { p.Stores = stores }
}

func newFixture(t *testing.T, opts ...fixtureOption) fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Report{}, &importlogdomain.Batch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	imports := importlogservice.New(importlogservice.Params{
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  importlogrepo.Provide(conn),
	})

	p := Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(),
		Locker:  lock.NewLocal(),
		Policy:  config.NewStaticIngestPolicy(config.DefaultIngestPolicy()),
		Imports: imports,
	}
	for _, opt := range opts {
		opt(&p)
	}

	return fixture{
		db:      conn,
		svc:     New(p).(*Service),
		repo:    repository.Provide(),
		imports: imports,
		clock:   clk,
	}
}

func (f fixture) find(t *testing.T, store, week, period string) *domain.Report {
	t.Helper()
	r, err := f.repo.FindByNaturalKey(context.Background(), f.db, domain.NaturalKey{
		StoreNumber: store, WeekPeriod: week, Period: period,
	})
	require.NoError(t, err)
	require.NotNil(t, r, "report %s/%s/%s", store, week, period)
	return r
}

func cogsRow(store, week, period string, extra ...tabular.Cell) tabular.Row {
	row := tabular.Row{
		{Header: "StoreNumber", Value: store},
		{Header: "WeekPeriod", Value: week},
		{Header: "Period", Value: period},
	}
	return append(row, extra...)
}

func cell(header string, v any) tabular.Cell {
	return tabular.Cell{Header: header, Value: v}
}

func TestIngestInsertsThenUpdatesSameKey(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{
		FileName: "week1.xlsx",
		Rows: []tabular.Row{
			cogsRow("101", "W1", "P1", cell("Sales2025", "1,000.00")),
			cogsRow("101", "W1", "P1", cell("Sales2025", "1,050.00")),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Total)
	assert.NotEmpty(t, summary.BatchID)

	got := f.find(t, "101", "W1", "P1")
	require.NotNil(t, got.Sales2025)
	assert.Equal(t, 1050.0, *got.Sales2025)
	assert.Equal(t, int64(1), got.Sr)
	assert.Equal(t, "week1.xlsx", got.FileName)
}

func TestIngestMatchesHeadersLoosely(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ingest(context.Background(), domain.IngestRequest{
		FileName: "loose.xlsx",
		Rows: []tabular.Row{{
			cell(" store number ", 101.0),
			cell("Week-Period", "W2"),
			cell("PERIOD", "P1"),
			cell("Food Cost percent", "31.256%"),
			cell("Sales 2024", "(12.5)"),
			cell("Wages", "n/a"),
		}},
	})
	require.NoError(t, err)

	got := f.find(t, "101", "W2", "P1")
	require.NotNil(t, got.FoodCostpercent)
	assert.Equal(t, 31.26, *got.FoodCostpercent)
	require.NotNil(t, got.Sales2024)
	assert.Equal(t, -12.5, *got.Sales2024)
	assert.Nil(t, got.Wages)
	assert.Nil(t, got.Sales2025)
}

func TestIngestReportsDiagnostics(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{
		Rows:       []tabular.Row{cogsRow("101", "W1", "P1", cell("Wages", "lots"))},
		RowNumbers: []int{7},
	})
	require.NoError(t, err)
	require.Len(t, summary.Diagnostics, 1)
	assert.Equal(t, 7, summary.Diagnostics[0].Row)
	assert.Equal(t, "Wages", summary.Diagnostics[0].Field)
	assert.Equal(t, 1, summary.Inserted)
}

func TestIngestRejectsOutOfRangeNumbers(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1",
			cell("Sales2025", "1e400"),
			cell("Sales2024", "-1e400"),
			cell("Wages", "1e999999999"),
			cell("TotalFoodCost", "812.40 USD"),
		),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	require.Len(t, summary.Diagnostics, 3)

	got := f.find(t, "101", "W1", "P1")
	assert.Nil(t, got.Sales2025)
	assert.Nil(t, got.Sales2024)
	assert.Nil(t, got.Wages)
	require.NotNil(t, got.TotalFoodCost)
	assert.Equal(t, 812.4, *got.TotalFoodCost)

	list, err := f.svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	_, err = json.Marshal(list)
	assert.NoError(t, err)
}

func TestIngestContinuesSrFromExistingMax(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("100", "W1", "P1"),
		cogsRow("100", "W2", "P1"),
	}})
	require.NoError(t, err)

	summary, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("200", "W1", "P1"),
		cogsRow("100", "W1", "P1"),
		cogsRow("201", "W1", "P1"),
		cogsRow("202", "W1", "P1"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)

	assert.Equal(t, int64(1), f.find(t, "100", "W1", "P1").Sr)
	assert.Equal(t, int64(3), f.find(t, "200", "W1", "P1").Sr)
	assert.Equal(t, int64(4), f.find(t, "201", "W1", "P1").Sr)
	assert.Equal(t, int64(5), f.find(t, "202", "W1", "P1").Sr)
}

func TestIngestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rows := []tabular.Row{
		cogsRow("101", "W1", "P1", cell("Sales2025", 10)),
		cogsRow("102", "W1", "P1", cell("Sales2025", 20)),
		cogsRow("103", "W1", "P1", cell("Sales2025", 30)),
	}

	first, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	before := f.find(t, "103", "W1", "P1")

	f.clock.Advance(time.Hour)
	second, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Updated)
	assert.Equal(t, 3, second.Total)

	after := f.find(t, "103", "W1", "P1")
	assert.Equal(t, before.Sr, after.Sr)
	assert.Equal(t, before.ID, after.ID)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	var count int64
	require.NoError(t, f.db.Model(&domain.Report{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestIngestRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Ingest(context.Background(), domain.IngestRequest{FileName: "empty.xlsx"})
	assert.ErrorIs(t, err, domain.ErrEmptySheet)

	batches, err := f.imports.List(context.Background(), importlogdomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestIngestRejectsOversizedBatch(t *testing.T) {
	policy := config.DefaultIngestPolicy()
	policy.MaxRows = 1
	f := newFixture(t, withPolicy(policy))

	_, err := f.svc.Ingest(context.Background(), domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("1", "W1", "P1"),
		cogsRow("2", "W1", "P1"),
	}})
	assert.ErrorIs(t, err, domain.ErrTooManyRows)
}

type failingRepo struct {
	domain.Repository
	failStore string
	onInsert  func()
}

func (r *failingRepo) Insert(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	if report.StoreNumber == r.failStore {
		return errors.New("disk full")
	}
	if err := r.Repository.Insert(ctx, db, report); err != nil {
		return err
	}
	if r.onInsert != nil {
		r.onInsert()
	}
	return nil
}

// staleMaxRepo reports a fixed MaxSr regardless of what is stored, as seen
// by a writer racing another process.
type staleMaxRepo struct {
	domain.Repository
	max int64
}

func (r *staleMaxRepo) MaxSr(context.Context, *gorm.DB) (int64, error) {
	return r.max, nil
}

func TestIngestSkipsSrTakenByAnotherWriter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withRepo(func(inner domain.Repository) domain.Repository {
		return &staleMaxRepo{Repository: inner}
	}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	for sr, store := range []string{"900", "901"} {
		require.NoError(t, f.repo.Insert(ctx, f.db, &domain.Report{
			ID: node.Generate(), Sr: int64(sr + 1), StoreNumber: store, WeekPeriod: "W1", Period: "P1",
		}))
	}

	summary, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1"),
		cogsRow("102", "W1", "P1"),
		cogsRow("103", "W1", "P1"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Errors)

	assert.Equal(t, int64(3), f.find(t, "101", "W1", "P1").Sr)
	assert.Equal(t, int64(4), f.find(t, "102", "W1", "P1").Sr)
	assert.Equal(t, int64(5), f.find(t, "103", "W1", "P1").Sr)
}

func TestSrCounterReseedMovesPastTakenValue(t *testing.T) {
	c := NewSrCounter(4)
	c.Reseed(2)
	assert.Equal(t, int64(6), c.Peek())
	c.Reseed(10)
	assert.Equal(t, int64(11), c.Peek())
}

type losingLocker struct{}

func (losingLocker) Obtain(context.Context, string, time.Duration) (lock.Lease, error) {
	return losingLease{}, nil
}

type losingLease struct{}

func (losingLease) Refresh(context.Context, time.Duration) error { return lock.ErrLeaseLost }
func (losingLease) Release(context.Context) error                { return nil }

func TestIngestStopsWhenLockLeaseIsLost(t *testing.T) {
	policy := config.DefaultIngestPolicy()
	policy.LockTTLSeconds = 1
	// Slow inserts so the lease refresh runs mid-batch.
	slow := withRepo(func(inner domain.Repository) domain.Repository {
		return &failingRepo{Repository: inner, onInsert: func() { time.Sleep(10 * time.Millisecond) }}
	})
	f := newFixture(t, withPolicy(policy), slow, func(p *Params) { p.Locker = losingLocker{} })

	rows := make([]tabular.Row, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, cogsRow(fmt.Sprintf("%d", 1000+i), "W1", "P1"))
	}
	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{Rows: rows})
	require.ErrorIs(t, err, domain.ErrBatchInterrupted)
	assert.ErrorIs(t, err, lock.ErrLeaseLost)
	assert.Less(t, summary.Total, len(rows))

	batches, err := f.imports.List(context.Background(), importlogdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, summary.BatchID, batches[0].ID)
	assert.Equal(t, importlogdomain.StatusInterrupted, batches[0].Status)
}

func TestIngestFailedInsertLeavesNoSrGap(t *testing.T) {
	f := newFixture(t, withRepo(func(inner domain.Repository) domain.Repository {
		return &failingRepo{Repository: inner, failStore: "bad"}
	}))

	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1"),
		cogsRow("bad", "W1", "P1"),
		cogsRow("103", "W1", "P1"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 3, summary.Errors[0].Row)
	assert.Equal(t, "bad", summary.Errors[0].StoreNumber)

	assert.Equal(t, int64(2), f.find(t, "103", "W1", "P1").Sr)

	batches, err := f.imports.List(context.Background(), importlogdomain.ListRequest{Dataset: importlogdomain.DatasetCogs})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, importlogdomain.StatusPartial, batches[0].Status)
}

func TestIngestStopsOnRowErrorWhenConfigured(t *testing.T) {
	policy := config.DefaultIngestPolicy()
	policy.StopOnRowError = true
	f := newFixture(t, withPolicy(policy), withRepo(func(inner domain.Repository) domain.Repository {
		return &failingRepo{Repository: inner, failStore: "bad"}
	}))

	summary, err := f.svc.Ingest(context.Background(), domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1"),
		cogsRow("bad", "W1", "P1"),
		cogsRow("103", "W1", "P1"),
	}})
	require.ErrorIs(t, err, domain.ErrBatchAborted)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total)
}

func TestIngestInterruptedReturnsPartialSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, withRepo(func(inner domain.Repository) domain.Repository {
		return &failingRepo{Repository: inner, onInsert: cancel}
	}))

	summary, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1"),
		cogsRow("102", "W1", "P1"),
		cogsRow("103", "W1", "P1"),
	}})
	require.ErrorIs(t, err, domain.ErrBatchInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Total)

	batches, err := f.imports.List(context.Background(), importlogdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, importlogdomain.StatusInterrupted, batches[0].Status)
	assert.Equal(t, 1, batches[0].Inserted)
}

func TestIngestBusyWhenLockHeld(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, func(p *Params) { p.Locker = locker })

	lease, err := locker.Obtain(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)
	defer lease.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{cogsRow("1", "W1", "P1")}})
	assert.ErrorIs(t, err, domain.ErrBatchBusy)
}

func TestSrCounter(t *testing.T) {
	c := NewSrCounter(41)
	assert.Equal(t, int64(42), c.Peek())
	assert.Equal(t, int64(42), c.Peek())
	c.Commit()
	assert.Equal(t, int64(42), c.Last())
	assert.Equal(t, int64(43), c.Peek())

	assert.Equal(t, int64(1), NewSrCounter(-3).Peek())
}

func TestSubmitCreatesWithDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{cogsRow("100", "W1", "P1")}})
	require.NoError(t, err)

	report, err := f.svc.Submit(ctx, domain.SubmitRequest{Values: tabular.Row{
		cell("StoreNumber", "101"),
		cell("Week", "3"),
		cell("WeekPeriod", "W3"),
		cell("Sales2025", "500"),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Sr)
	require.NotNil(t, report.Sales2025)
	assert.Equal(t, 500.0, *report.Sales2025)
	require.NotNil(t, report.Wages)
	assert.Equal(t, 0.0, *report.Wages)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), domain.SubmitRequest{Values: tabular.Row{cell("Week", "3")}})
	assert.ErrorIs(t, err, domain.ErrInvalidStore)

	_, err = f.svc.Submit(context.Background(), domain.SubmitRequest{Values: tabular.Row{cell("StoreNumber", "101")}})
	assert.ErrorIs(t, err, domain.ErrInvalidWeek)
}

func TestSubmitUpdatesOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{FileName: "w1.xlsx", Rows: []tabular.Row{
		cogsRow("101", "W1", "P1", cell("Week", "1"), cell("StoreName", "Main"), cell("Wages", 900)),
	}})
	require.NoError(t, err)
	existing := f.find(t, "101", "W1", "P1")

	updated, err := f.svc.Submit(ctx, domain.SubmitRequest{
		ID: existing.ID.String(),
		Values: tabular.Row{
			cell("StoreNumber", "101"),
			cell("Week", "1"),
			cell("Wages", "950.5"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, existing.Sr, updated.Sr)
	assert.Equal(t, "Main", updated.StoreName)
	assert.Equal(t, "w1.xlsx", updated.FileName)
	require.NotNil(t, updated.Wages)
	assert.Equal(t, 950.5, *updated.Wages)

	_, err = f.svc.Submit(ctx, domain.SubmitRequest{
		ID:     "12345",
		Values: tabular.Row{cell("StoreNumber", "101"), cell("Week", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListGetAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1", cell("StoreName", "Main Street")),
		cogsRow("102", "W1", "P1", cell("StoreName", "Elm")),
		cogsRow("101", "W2", "P1", cell("StoreName", "Main Street")),
	}})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListRequest{StoreNumber: "101"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(1), resp.Items[0].Sr)
	assert.Equal(t, int64(3), resp.Items[1].Sr)

	resp, err = f.svc.List(ctx, domain.ListRequest{Search: "elm"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	got, err := f.svc.GetByID(ctx, resp.Items[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "102", got.StoreNumber)

	require.NoError(t, f.svc.Delete(ctx, got.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(ctx, got.ID.String()), domain.ErrNotFound)
	_, err = f.svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

type stubStores struct {
	storedirdomain.Service
	store storedirdomain.Store
}

func (s stubStores) GetByNumber(_ context.Context, n string) (storedirdomain.Store, error) {
	if n != s.store.StoreNumber {
		return storedirdomain.Store{}, storedirdomain.ErrNotFound
	}
	return s.store, nil
}

func TestStoreMappingFallsBackToDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withStores(stubStores{store: storedirdomain.Store{
		StoreNumber: "555", StoreName: "Harbor", ARL: "Kim", ReportingHead: "East",
	}}))

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1", cell("StoreName", "Main"), cell("ARL", "Jane")),
	}})
	require.NoError(t, err)

	m, err := f.svc.StoreMapping(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Main", m.StoreName)
	assert.Equal(t, "Jane", m.ARL)

	m, err = f.svc.StoreMapping(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, "Harbor", m.StoreName)

	_, err = f.svc.StoreMapping(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportWritesSchemaColumns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1", cell("Sales2025", "1,050")),
		cogsRow("102", "W1", "P1"),
	}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &buf))

	sheet, err := spreadsheet.Read(&buf, spreadsheet.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, exportSheet, sheet.Name)
	assert.Equal(t, domain.Schema.Headers(), sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	sr, _ := sheet.Rows[0].Lookup("Sr")
	assert.Equal(t, "1", tabular.CoerceString(sr))
	sales, _ := sheet.Rows[0].Lookup("Sales2025")
	assert.Equal(t, "1050", tabular.CoerceString(sales))
}

func TestWeeklyReportPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Ingest(ctx, domain.IngestRequest{Rows: []tabular.Row{
		cogsRow("101", "W1", "P1", cell("Sales2025", "12345.5"), cell("DateFrom", "1/1"), cell("To", "1/7")),
	}})
	require.NoError(t, err)

	r, err := f.svc.WeeklyReportPDF(ctx, "101", "W1")
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	_, err = f.svc.WeeklyReportPDF(ctx, "101", "W9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.WeeklyReportPDF(ctx, "101", "")
	assert.ErrorIs(t, err, domain.ErrInvalidWeekPeriod)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "12,345.50", money(ptr(12345.5)))
	assert.Equal(t, "-1,000.00", money(ptr(-1000)))
	assert.Equal(t, "999", whole(ptr(999.4)))
	assert.Equal(t, "", money(nil))
}

func ptr(v float64) *float64 { return &v }
