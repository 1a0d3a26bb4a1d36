package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/dreamvision/internal/infra/config"
)

// App owns the lifecycle of the dream journal HTTP server.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.logger.Info("dreamvision starting",
		"address", a.cfg.HTTP.Address,
		"remote_interpretation", a.cfg.Interpretation.RemoteEnabled && a.cfg.LLM.APIKey != "",
		"trial_allowance", a.cfg.Entitlement.TrialAllowance,
		"postgres", a.cfg.Postgres.DSN != "",
		"stats_cache", a.cfg.Redis.Enabled,
		"object_export", a.cfg.Export.Enabled(),
	)

	go func() {
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		timeout := a.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutdown signal received, draining requests", "timeout", timeout)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
