package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/credential"
	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/logging"
	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/notify"
	"github.com/nhle/taskly/internal/store"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg        *model.AppConfig
	logger     zerolog.Logger
	store      *store.SQLStore
	dispatcher *notify.Dispatcher
	engine     *engine.Engine
}

// openApp loads configuration and wires the store, notification
// dispatcher and engine. The caller must call close.
func openApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	var secrets store.PasswordSource
	if cfg.Database.Driver == model.DriverMySQL {
		vault, err := credential.Open(filepath.Join(filepath.Dir(configPath), "credentials"))
		if err != nil {
			return nil, err
		}
		secrets = vault
	}

	s, err := store.Open(ctx, cfg.Database, secrets)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}

	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if !cfg.Notify.LogOnly {
		sinks = append(sinks, notify.NewStoreSink(s))
	}
	d := notify.New(logger, cfg.Notify.Buffer, sinks...)
	d.Start()

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      s,
		dispatcher: d,
		engine:     engine.New(logger, s, d),
	}, nil
}

// close flushes pending notifications before closing the database.
func (a *app) close() {
	a.dispatcher.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("failed to close store")
	}
}
