package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/msto63/dcmd/foundation/command/dispatch"
	dlog "github.com/msto63/dcmd/foundation/core/log"
	"github.com/msto63/dcmd/internal/loader"
	"github.com/msto63/dcmd/internal/store"
	"github.com/msto63/dcmd/pkg/core/config"
	"github.com/msto63/dcmd/pkg/core/logging"
)

// app bundles the runtime with the resources it owns
type app struct {
	cfg     *config.Config
	logger  *dlog.Logger
	rt      *dispatch.Runtime
	closers []io.Closer
}

// newApp loads the configuration and builds a runtime with the configured
// history backend and startup commands
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.General.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.NewLogger(logging.LoggerConfig{
		Name:   cfg.General.Name,
		Level:  level,
		Format: cfg.General.LogFormat,
		Output: cfg.General.LogOutput,
	})

	a := &app{cfg: cfg, logger: logger}

	var history dispatch.History
	switch cfg.History.Backend {
	case config.HistorySQLite:
		sqlite, err := store.NewSQLiteHistory(store.SQLiteHistoryConfig{Path: cfg.History.Path})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlite)
		if cfg.History.Retention.Duration > 0 {
			if n, err := sqlite.Prune(ctx, cfg.History.Retention.Duration); err != nil {
				logger.WarnWithErr("History pruning failed", err)
			} else if n > 0 {
				logger.Debug("History pruned", dlog.Fields{"removed": n})
			}
		}
		history = sqlite
	default:
		history = dispatch.NewMemoryHistory()
	}

	fs := afero.NewOsFs()
	a.rt = dispatch.New(dispatch.Options{
		History: history,
		Loader:  loader.New(fs, logger),
		Fs:      fs,
		Out:     cmd.OutOrStdout(),
		In:      cmd.InOrStdin(),
		Logger:  logger,
	})

	if err := a.loadCommands(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// loadCommands replaces the loadable namespace with the configured bundle
// and merges the manifests into it
func (a *app) loadCommands(ctx context.Context) error {
	if _, err := a.rt.Load(ctx, a.cfg.Loader.Bundle, false); err != nil {
		return err
	}
	if a.cfg.Loader.Manifests == "" {
		return nil
	}
	if _, err := a.rt.Load(ctx, a.cfg.Loader.Manifests, true); err != nil {
		a.logger.WarnWithErr("Manifests not loaded", err, dlog.Fields{"source": a.cfg.Loader.Manifests})
	}
	return nil
}

// watch starts hot-reloading the manifests when configured. The returned
// function stops the watcher.
func (a *app) watch(ctx context.Context) func() {
	if !a.cfg.Loader.Watch {
		return func() {}
	}
	w := loader.NewWatcher(a.cfg.Loader.Manifests, a.loadCommands, a.logger)
	if err := w.Start(ctx); err != nil {
		a.logger.WarnWithErr("Manifest watching disabled", err)
		return func() {}
	}
	return w.Stop
}

// Close releases the history store and log files
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, logging.CloseOutputs())
	return errors.Join(errs...)
}
