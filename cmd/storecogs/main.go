package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/smallbiznis/storecogs/internal/lock"
	"github.com/smallbiznis/storecogs/internal/migration"
	"github.com/smallbiznis/storecogs/internal/observability"
	"github.com/smallbiznis/storecogs/internal/scheduler"
	"github.com/smallbiznis/storecogs/internal/server"
	"github.com/smallbiznis/storecogs/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		lock.Module,
		clock.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
