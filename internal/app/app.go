package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpapp "lifecursor/internal/app/http"
	"lifecursor/internal/config"
	"lifecursor/internal/lib/jwt"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/revocation"
	"lifecursor/internal/services/auth"
	"lifecursor/internal/services/memos"
	"lifecursor/internal/services/tasks"
	"lifecursor/internal/storage/mongodb"
	"lifecursor/internal/storage/redis"
	"lifecursor/internal/storage/sqlite"
)

const connectTimeout = 10 * time.Second

type App struct {
	HTTPSrv *httpapp.App

	log             *slog.Logger
	storage         *sqlite.Storage
	closeRevocation func(ctx context.Context) error
}

// New wires storage, the revocation backend, services and the HTTP server.
// It panics when any dependency cannot be set up.
func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		panic(err)
	}

	if cfg.AutoMigrate {
		applied, err := storage.Migrate()
		if err != nil {
			panic(err)
		}
		log.Info("schema checked", slog.Bool("applied", applied))
	}

	revoker, closeRevocation, err := newRevoker(log, cfg.Revocation)
	if err != nil {
		_ = storage.Close()
		panic(err)
	}

	issuer := jwt.NewIssuer(cfg.Auth.Secret)

	authService := auth.New(log, storage, storage, revoker, issuer, cfg.Auth.TokenTTL)
	tasksService := tasks.New(log, storage)
	memosService := memos.New(log, storage)

	httpApp := httpapp.New(log,
		httpapp.Config{
			Address:     cfg.HTTPServer.Address,
			Timeout:     cfg.HTTPServer.Timeout,
			IdleTimeout: cfg.HTTPServer.IdleTimeout,
			CORSOrigins: cfg.HTTPServer.CORSOrigins,
		},
		httpapp.Services{
			Auth:     authService,
			Resolver: authService,
			Tasks:    tasksService,
			Memos:    memosService,
		},
	)

	return &App{
		HTTPSrv:         httpApp,
		log:             log,
		storage:         storage,
		closeRevocation: closeRevocation,
	}
}

func newRevoker(log *slog.Logger, cfg config.RevocationConfig) (auth.Revoker, func(context.Context) error, error) {
	const op = "app.newRevoker"

	log = log.With(slog.String("op", op), slog.String("backend", cfg.Backend))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.Backend {
	case config.RevocationMongoDB:
		s, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("revocation registry connected", slog.String("database", cfg.Mongo.Database))
		return s, s.Close, nil

	case config.RevocationRedis:
		s, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("revocation registry connected", slog.String("addr", cfg.Redis.Addr))
		return s, func(context.Context) error { return s.Close() }, nil

	case config.RevocationMemory:
		m := revocation.NewMemory(log)

		sweepCtx, stopSweep := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Run(sweepCtx, cfg.SweepInterval)
		}()

		log.Warn("revocations are kept in memory and will be lost on restart")

		return m, func(ctx context.Context) error {
			stopSweep()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Backend)
	}
}

// Stop shuts the HTTP server down, then releases the revocation backend and storage.
func (a *App) Stop(ctx context.Context) error {
	const op = "app.Stop"

	log := a.log.With(slog.String("op", op))

	var errs []error

	if err := a.HTTPSrv.Stop(ctx); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
		errs = append(errs, err)
	}

	if err := a.closeRevocation(ctx); err != nil {
		log.Error("failed to close revocation registry", sl.Err(err))
		errs = append(errs, err)
	}

	if err := a.storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
