package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/marketplace-ledger/ledger-service/internal/api/http"
	"github.com/marketplace-ledger/ledger-service/internal/api/http/handlers"
	"github.com/marketplace-ledger/ledger-service/internal/app"
	"github.com/marketplace-ledger/ledger-service/internal/auth"
	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wire, err := app.NewWire(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise dependencies", zap.Error(err))
	}
	defer wire.Close()

	authMiddleware := auth.NewAuthMiddleware(wire.Tokens, wire.Store.Profiles())

	server := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.Logger.Development,
	})
	httptransport.RegisterMiddlewares(server, logger, wire.Metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, wire.Postgres, wire.Redis, wire.Metrics),
		Payments:       handlers.NewPaymentsHandler(wire.Payments),
		Balances:       handlers.NewBalancesHandler(wire.Deposits),
		Admin:          handlers.NewAdminHandler(wire.Earnings),
		Contracts:      handlers.NewContractsHandler(wire.Contracts),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := server.ShutdownWithTimeout(cfg.App.RequestTimeout()); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
