package proto

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Options(
		fx.Provide(NewGRPCServer),
		fx.Invoke(func(*CatalogServerImpl) {}),
	)
)
