package storedir

import (
	"github.com/smallbiznis/storecogs/internal/storedir/repository"
	"github.com/smallbiznis/storecogs/internal/storedir/service"
	"go.uber.org/fx"
)

var Module = fx.Module("storedir.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
