package lock

import "go.uber.org/fx"

var Module = fx.Module("batch.lock",
	fx.Provide(NewRedisClient),
	fx.Provide(New),
)
