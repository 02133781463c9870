package cogs

import (
	"github.com/smallbiznis/storecogs/internal/cogs/repository"
	"github.com/smallbiznis/storecogs/internal/cogs/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cogs.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
