package importlog

import (
	"github.com/smallbiznis/storecogs/internal/importlog/repository"
	"github.com/smallbiznis/storecogs/internal/importlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("importlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
