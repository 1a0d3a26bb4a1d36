//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/dreamvision/internal/bootstrap"
	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/config"
	httpiface "github.com/yanqian/dreamvision/internal/interface/http"
	"github.com/yanqian/dreamvision/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideDreamConfig,
		provideAuthConfig,
		provideInterpreterConfig,
		providePostgresPool,
		provideUserStore,
		provideAuthRepository,
		provideProfileRepository,
		provideEntryRepository,
		provideStatsCache,
		provideExportStore,
		provideRemoteGenerator,
		dream.NewEngine,
		wire.Bind(new(dream.Interpreter), new(*dream.Engine)),
		dream.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
