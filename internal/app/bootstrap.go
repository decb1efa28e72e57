package app

import (
	"context"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/configuration"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/storage"
	"go.uber.org/zap"
)

// Open wires the collaborators described by cfg. Object storage and the
// virus scanner are only set up when withObjects is true. The returned
// cleanup function releases every opened connection.
func Open(ctx context.Context, cfg *configuration.Config, log *zap.Logger, withObjects bool) (Deps, func(), error) {
	var (
		deps    Deps
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	validate := cfg.ValidateRecords
	if withObjects {
		validate = cfg.ValidateStorage
	}
	if err := validate(); err != nil {
		return Deps{}, cleanup, err
	}

	switch cfg.Records.Backend {
	case configuration.BackendPostgres:
		pg, err := storage.ConnectPostgres(ctx, cfg.Records.DatabaseURL, log)
		if err != nil {
			return Deps{}, cleanup, err
		}
		closers = append(closers, func() { pg.Close() })
		deps.Store = pg
	default:
		deps.Store = storage.NewLocalStorage(cfg.Records.File)
	}

	if withObjects {
		objects, err := services.NewObjectStore(cfg.Storage, log)
		if err != nil {
			cleanup()
			return Deps{}, func() {}, err
		}
		if err := objects.CheckConnection(ctx); err != nil {
			cleanup()
			return Deps{}, func() {}, err
		}
		deps.Objects = objects

		if cfg.CLAMAVURL != "" {
			deps.Scanner = services.NewScanner(cfg.CLAMAVURL, log)
		}
	}

	if cfg.NATSURL != "" {
		pub, err := services.ConnectNATS(cfg.NATSURL, log)
		if err != nil {
			log.Warn("events disabled: failed to connect to NATS", zap.String("url", cfg.NATSURL), zap.Error(err))
		} else {
			closers = append(closers, pub.Close)
			deps.Events = pub
		}
	}

	return deps, cleanup, nil
}
