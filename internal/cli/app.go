// Package cli is the cobra command tree for the spendsync client.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"spendsync/internal/api"
	"spendsync/internal/config"
	"spendsync/internal/log"
	"spendsync/internal/metrics"
	"spendsync/internal/services"
	"spendsync/internal/state"
	"spendsync/internal/storage"
)

// App holds everything a command needs once the stack is wired.
type App struct {
	Config     *config.Config
	Store      *state.Store
	Dispatcher *services.Dispatcher
	Vault      *storage.SQLiteVault
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry
}

// storeTokens reads the bearer token from the state tree, so the API client
// always sends whatever the current session holds.
type storeTokens struct {
	store *state.Store
}

func (t storeTokens) Token(ctx context.Context) (string, bool) {
	snap := t.store.Snapshot()
	if snap.Session.Token == "" {
		return "", false
	}
	return snap.Session.Token, true
}

// newApp wires config, vault, API client, store and dispatcher, starts the
// dispatcher and restores any persisted session.
func newApp(ctx context.Context, configPath string) (*App, error) {
	// .env is optional local convenience.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Setup(cfg.LogLevel, cfg.LogFormat)

	vault, err := storage.NewSQLiteVault(cfg.VaultDBPath)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	store := state.NewStore()
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, storeTokens{store: store})
	dispatcher := services.NewDispatcher(client, store, vault, m)

	if err := dispatcher.Start(ctx); err != nil {
		vault.Close()
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Store:      store,
		Dispatcher: dispatcher,
		Vault:      vault,
		Metrics:    m,
		Registry:   registry,
	}

	if _, err := dispatcher.Restore(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to restore session", "error", err)
	}

	return app, nil
}

func (a *App) Close(ctx context.Context) {
	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.Dispatcher.Stop(stopCtx); err != nil {
		slog.WarnContext(ctx, "Dispatcher stop failed", "error", err)
	}
	if err := a.Vault.Close(); err != nil {
		slog.WarnContext(ctx, "Vault close failed", "error", err)
	}
}

// waitSettled blocks until pred holds or the timeout passes.
func (a *App) waitSettled(ctx context.Context, pred func(state.State) bool) error {
	waitCtx, cancel := context.WithTimeout(ctx, a.Config.APITimeout+5*time.Second)
	defer cancel()
	return a.Store.Wait(waitCtx, pred)
}

func settled(st state.Status) bool {
	return st == state.StatusSucceeded || st == state.StatusFailed
}
