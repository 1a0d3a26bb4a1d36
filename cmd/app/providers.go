package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/config"
	"github.com/yanqian/dreamvision/internal/infra/dreamrepo"
	"github.com/yanqian/dreamvision/internal/infra/exportstore"
	"github.com/yanqian/dreamvision/internal/infra/interpreter"
	"github.com/yanqian/dreamvision/internal/infra/llm/chatgpt"
	"github.com/yanqian/dreamvision/internal/infra/statscache"
	"github.com/yanqian/dreamvision/internal/infra/userrepo"
)

// userStore backs both account and entitlement persistence.
type userStore interface {
	auth.Repository
	dream.ProfileRepository
}

func provideDreamConfig(cfg *config.Config) dream.Config {
	return dream.Config{
		TrialAllowance:   cfg.Entitlement.TrialAllowance,
		RemoteTimeout:    cfg.Interpretation.RemoteTimeout,
		DefaultListLimit: cfg.Journal.DefaultPageSize,
		MaxListLimit:     cfg.Journal.MaxPageSize,
		ExportPrefix:     cfg.Export.Prefix,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		TrialAllowance:  cfg.Entitlement.TrialAllowance,
	}
}

func provideInterpreterConfig(cfg *config.Config) interpreter.Config {
	return interpreter.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxTokens:       cfg.LLM.MaxTokens,
		SystemPrompt:    cfg.Interpretation.Prompt,
		MaxPromptTokens: cfg.Interpretation.MaxPromptTokens,
	}
}

// providePostgresPool returns nil when no DSN is configured or the database
// is unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideUserStore(pool *pgxpool.Pool) userStore {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideAuthRepository(store userStore) auth.Repository {
	return store
}

func provideProfileRepository(store userStore) dream.ProfileRepository {
	return store
}

func provideEntryRepository(pool *pgxpool.Pool) dream.EntryRepository {
	if pool == nil {
		return dreamrepo.NewMemoryRepository()
	}
	return dreamrepo.NewPostgresRepository(pool)
}

func provideStatsCache(cfg *config.Config, logger *slog.Logger) dream.StatsCache {
	if cfg.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return statscache.NewMemoryStore(cfg.Redis.StatsTTL)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return statscache.NewMemoryStore(cfg.Redis.StatsTTL)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey stats cache enabled", "addr", cfg.Redis.Addr)
			return statscache.NewValkeyStore(client, "dreamvision", cfg.Redis.StatsTTL)
		}
	}
	return statscache.NewMemoryStore(cfg.Redis.StatsTTL)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideExportStore(cfg *config.Config, logger *slog.Logger) dream.ExportStore {
	if !cfg.Export.Enabled() {
		logger.Info("export storage not configured, exports are returned inline")
		return exportstore.NewMemoryStore()
	}
	store, err := exportstore.NewS3Store(
		cfg.Export.Endpoint,
		cfg.Export.AccessKey,
		cfg.Export.SecretKey,
		cfg.Export.Bucket,
		cfg.Export.Region,
		cfg.Export.URLTTL,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize export storage, exports are returned inline", "error", err)
		return exportstore.NewMemoryStore()
	}
	logger.Info("export storage enabled", "bucket", cfg.Export.Bucket)
	return store
}

// provideRemoteGenerator returns a nil interface when the remote path is
// disabled so the engine goes straight to local composition.
func provideRemoteGenerator(cfg *config.Config, genCfg interpreter.Config, logger *slog.Logger) dream.RemoteGenerator {
	if !cfg.Interpretation.RemoteEnabled {
		logger.Info("remote interpretation disabled")
		return nil
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, remote interpretation disabled")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to create llm client, remote interpretation disabled", "error", err)
		return nil
	}
	counter, err := interpreter.NewTokenCounter(cfg.LLM.Model)
	if err != nil {
		logger.Warn("tokenizer unavailable, using approximate token counts", "model", cfg.LLM.Model, "error", err)
	}
	return interpreter.NewGenerator(genCfg, client, counter, logger)
}
