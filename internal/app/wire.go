package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/marketplace-ledger/ledger-service/internal/auth"
	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
	"github.com/marketplace-ledger/ledger-service/internal/persistence"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	"github.com/marketplace-ledger/ledger-service/internal/service"
)

// Wire bundles connections, stores and services shared by the API server
// and the CLI.
type Wire struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	Store    repository.Store
	Tokens   *auth.TokenManager

	Payments  *service.PaymentService
	Deposits  *service.DepositService
	Earnings  *service.EarningsService
	Contracts *service.ContractService
}

// NewWire connects to Postgres and Redis and constructs the dependency graph.
// Callers must Close the returned Wire.
func NewWire(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Wire, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	metrics := observability.NewMetrics()

	store := repository.NewStore(pg.PoolHandle())

	return &Wire{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Postgres: pg,
		Redis:    redis,
		Store:    store,
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes),
		Payments: service.NewPaymentService(service.PaymentDependencies{
			Store:   store,
			Locker:  persistence.NewRedisLocker(redis, logger),
			Logger:  logger,
			Metrics: metrics,
			Config:  cfg.Ledger,
		}),
		Deposits: service.NewDepositService(service.DepositDependencies{
			Store:   store,
			Logger:  logger,
			Metrics: metrics,
			Config:  cfg.Ledger,
		}),
		Earnings: service.NewEarningsService(service.EarningsDependencies{
			Store:  store,
			Logger: logger,
			Config: cfg.Ledger,
		}),
		Contracts: service.NewContractService(store),
	}, nil
}

// Close releases connections.
func (w *Wire) Close() {
	if w == nil {
		return
	}
	w.Redis.Close()
	w.Postgres.Close()
}
