// Package app wires config, logging, the backend client, persistent state and
// the session together for the cropsense binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"cropsense/internal/api"
	"cropsense/internal/config"
	"cropsense/internal/logging"
	"cropsense/internal/session"
	"cropsense/internal/storage"

	"go.uber.org/zap"
)

type Options struct {
	ConfigPath string
	Verbose    bool
	// BaseURL overrides api.base_url when set
	BaseURL string
	// Ephemeral keeps session and preferences in memory for this run only
	Ephemeral bool
}

// App holds the long-lived pieces shared by every command
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Client  *api.Client
	Store   storage.Store
	Prefs   *storage.Preferences
	Session *session.Session
}

// New loads configuration, opens the state store and restores any saved session.
// A session that cannot be restored is logged and left signed out.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.BaseURL != "" {
		if !strings.HasPrefix(opts.BaseURL, "http://") && !strings.HasPrefix(opts.BaseURL, "https://") {
			return nil, fmt.Errorf("--base-url must be an http(s) URL, got %q", opts.BaseURL)
		}
		cfg.API.BaseURL = opts.BaseURL
	}
	if opts.Ephemeral {
		cfg.Storage.Driver = "memory"
	}

	logger, err := logging.New(cfg.Logging.Level, opts.Verbose)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	sess := session.New(store, client, logger)
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}
	logger.Debug("app ready",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("session", sess.State().String()))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Store:   store,
		Prefs:   storage.NewPreferences(store),
		Session: sess,
	}, nil
}

// Close releases the state store and flushes the logger
func (a *App) Close() error {
	err := a.Store.Close()
	// Sync on stderr returns EINVAL on some platforms
	_ = a.Logger.Sync()
	if err != nil {
		return fmt.Errorf("failed to close state store: %w", err)
	}
	return nil
}
