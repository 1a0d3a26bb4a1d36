// Hand-maintained injector matching the provider set in wire.go. Running
// `go generate ./cmd/app` replaces it with wire's output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/yanqian/dreamvision/internal/bootstrap"
	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/config"
	"github.com/yanqian/dreamvision/internal/interface/http"
	"github.com/yanqian/dreamvision/pkg/logger"
)

// Injectors from wire.go:

func initializeApp() (*bootstrap.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	slogLogger := logger.New()
	authConfig := provideAuthConfig(configConfig)
	pool := providePostgresPool(configConfig, slogLogger)
	mainUserStore := provideUserStore(pool)
	repository := provideAuthRepository(mainUserStore)
	service := auth.NewService(authConfig, repository, slogLogger)
	dreamConfig := provideDreamConfig(configConfig)
	entryRepository := provideEntryRepository(pool)
	profileRepository := provideProfileRepository(mainUserStore)
	interpreterConfig := provideInterpreterConfig(configConfig)
	remoteGenerator := provideRemoteGenerator(configConfig, interpreterConfig, slogLogger)
	engine := dream.NewEngine(dreamConfig, remoteGenerator, slogLogger)
	statsCache := provideStatsCache(configConfig, slogLogger)
	exportStore := provideExportStore(configConfig, slogLogger)
	dreamService := dream.NewService(dreamConfig, entryRepository, profileRepository, engine, statsCache, exportStore, slogLogger)
	handler := http.NewHandler(service, dreamService, slogLogger)
	server := http.NewRouter(configConfig, handler)
	app := bootstrap.NewApp(configConfig, slogLogger, server)
	return app, nil
}
