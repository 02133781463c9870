package main

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/cogs"
	cogsdomain "github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/smallbiznis/storecogs/internal/importlog"
	"github.com/smallbiznis/storecogs/internal/jobmetrics"
	"github.com/smallbiznis/storecogs/internal/lock"
	"github.com/smallbiznis/storecogs/internal/migration"
	"github.com/smallbiznis/storecogs/internal/observability"
	"github.com/smallbiznis/storecogs/internal/providers/pdf"
	"github.com/smallbiznis/storecogs/internal/sales"
	salesdomain "github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/storedir"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
	"github.com/smallbiznis/storecogs/pkg/db"
	"go.uber.org/fx"
)

const startTimeout = 30 * time.Second

// services is the part of the dependency graph the CLI drives directly.
type services struct {
	fx.In

	Policy *config.IngestPolicyHolder
	Cogs   cogsdomain.Service
	Stores storedirdomain.Service
	Sales  salesdomain.Service
	Pusher jobmetrics.Pusher `optional:"true"`
}

// withServices builds the same graph as the server minus HTTP, runs fn and
// stops the graph again.
func withServices(ctx context.Context, fn func(context.Context, services) error) error {
	var svc services
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		fx.Provide(jobmetrics.NewPusher),
		db.Module,
		migration.Module,
		lock.Module,
		clock.Module,
		pdf.Module,
		importlog.Module,
		storedir.Module,
		sales.Module,
		cogs.Module,
		fx.Populate(&svc),
	)

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, svc)
}

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
