package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/opportunitycup/marketplace-api/internal/api"
	"github.com/opportunitycup/marketplace-api/internal/api/handler"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
	"github.com/opportunitycup/marketplace-api/internal/core/service"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/cache"
	mongodb "github.com/opportunitycup/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/opportunitycup/marketplace-api/internal/infrastructure/db/redis"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/queue"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/security"
	"github.com/opportunitycup/marketplace-api/internal/pkg/config"
	"github.com/opportunitycup/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.Context)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace-api",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	health := []handler.HealthCheck{{Name: "mongo", Check: func(ctx context.Context) error { return mongodb.Ping(ctx, client) }}}

	revocations, res, err := newRevocationStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer res.close()
	if res.check != nil {
		health = append(health, *res.check)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Workers outlive gctx so requests still in flight during Shutdown can
	// finish hashing; they are stopped once the server has drained.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	pool.Start(poolCtx)

	bc, err := security.NewBcryptHasher(cfg.Auth.HashCost)
	if err != nil {
		return err
	}
	hasher := security.NewPooledHasher(bc, pool)

	tokens, err := security.NewTokenService(security.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	users := mongodb.NewUserRepository(db)
	ledger := mongodb.NewBalanceRepository(db)
	gate := service.NewGate(tokens, users)

	e := api.NewRouter(api.Dependencies{
		Auth:        service.NewAuthService(users, hasher, tokens, tokens, revocations, service.AuthOptions{MaskLoginErrors: cfg.Auth.MaskLoginErrors}, log),
		Users:       service.NewUserService(users, gate, tokens, log),
		Balance:     service.NewBalanceService(users, ledger, gate, log),
		Gate:        gate,
		Cookie:      handler.NewRefreshCookie(cfg.Cookie),
		Health:      health,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
		Registerer:  prometheus.DefaultRegisterer,
		Gatherer:    prometheus.DefaultGatherer,
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Int("hash_workers", pool.Size()).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return shutdown(e, stopPool)
	})

	return g.Wait()
}

// shutdown drains the server and only then stops the hash workers.
func shutdown(srv interface{ Shutdown(context.Context) error }, stopWorkers context.CancelFunc) error {
	defer stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

type revocationResources struct {
	check *handler.HealthCheck
	close func()
}

// newRevocationStore builds the configured backend. Memory entries are kept
// slightly longer than a refresh token lives.
func newRevocationStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.RevocationStore, revocationResources, error) {
	switch cfg.Auth.RevocationBackend {
	case "memory":
		store, err := cache.NewRevocationStore(cfg.Auth.RefreshTokenTTL + time.Hour)
		if err != nil {
			return nil, revocationResources{}, err
		}
		log.Warn().Msg("refresh revocations are held in memory and are lost on restart")
		return store, revocationResources{close: func() { _ = store.Close() }}, nil
	default:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, revocationResources{}, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		check := &handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisdb.Ping(ctx, client) }}
		return redisdb.NewRevocationStore(client), revocationResources{check: check, close: func() { _ = client.Close() }}, nil
	}
}
