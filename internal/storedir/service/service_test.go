package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storecogs/internal/clock"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	importlogrepo "github.com/smallbiznis/storecogs/internal/importlog/repository"
	importlogservice "github.com/smallbiznis/storecogs/internal/importlog/service"
	"github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/internal/storedir/repository"
	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	imports importlogdomain.Service
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Store{}, &importlogdomain.Batch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC))
	imports := importlogservice.New(importlogservice.Params{
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  importlogrepo.Provide(conn),
	})
	svc := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(conn),
		Imports: imports,
	})
	return fixture{svc: svc, imports: imports, clock: clk}
}

func storeRow(number any, name, arl, head string) tabular.Row {
	return tabular.Row{
		{Header: "Reporting Head", Value: head},
		{Header: "ARL", Value: arl},
		{Header: "Store Name", Value: name},
		{Header: "Store Number", Value: number},
	}
}

func TestReplaceSwapsDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Replace(ctx, domain.ReplaceRequest{
		FileName: "old.xlsx",
		Rows:     []tabular.Row{storeRow("900", "Old", "A", "H")},
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	resp, err := f.svc.Replace(ctx, domain.ReplaceRequest{
		FileName: "stores.xlsx",
		Rows: []tabular.Row{
			storeRow(101.0, "Main St", "Jane", "North"),
			storeRow("102", "Elm", "Raj", "South"),
			storeRow("101", "Dup", "X", "Y"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.NotEmpty(t, resp.BatchID)

	stores, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)

	got, err := f.svc.GetByNumber(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Main St", got.StoreName)
	assert.Equal(t, "Jane", got.ARL)
	assert.Equal(t, "North", got.ReportingHead)
	assert.Equal(t, "stores.xlsx", got.FileName)

	_, err = f.svc.GetByNumber(ctx, "900")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	batches, err := f.imports.List(ctx, importlogdomain.ListRequest{Dataset: importlogdomain.DatasetStores})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, 2, batches[0].Inserted)
	assert.Equal(t, 1, batches[0].Skipped)
	assert.Equal(t, importlogdomain.StatusCompleted, batches[0].Status)
}

func TestReplaceRejectsEmptySheet(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Replace(context.Background(), domain.ReplaceRequest{FileName: "empty.xlsx"})
	assert.ErrorIs(t, err, domain.ErrEmptySheet)
}

func TestGetByNumberValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByNumber(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidStoreNumber)
}
