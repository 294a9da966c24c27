package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/proto"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/service"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/storage"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/transport"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			db.NewGormClient,
			storage.New,
			service.NewUsers,
			service.NewTags,
			service.NewIngredients,
			service.NewRecipes,
			transport.NewHTTPServer,
		),
		fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Desugar()}
		}),
		proto.Module,
		fx.Invoke(func(*transport.HTTPServer) {}),
	).Run()
}
