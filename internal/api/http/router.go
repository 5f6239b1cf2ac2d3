package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/api/http/handlers"
	"github.com/marketplace-ledger/ledger-service/internal/auth"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Payments       *handlers.PaymentsHandler
	Balances       *handlers.BalancesHandler
	Admin          *handlers.AdminHandler
	Contracts      *handlers.ContractsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	protected.Get("/contracts", cfg.Contracts.ListContracts)
	protected.Get("/contracts/:id", cfg.Contracts.GetContract)
	protected.Get("/jobs/unpaid", cfg.Contracts.ListUnpaidJobs)

	requireClient := auth.RequireProfileType(domain.ProfileTypeClient)
	protected.Post("/jobs/:job_id/pay", requireClient, cfg.Payments.PayJob)
	protected.Post("/balances/deposit/:userId", requireClient, cfg.Balances.Deposit)
	protected.Get("/balances/:userId/owed", requireClient, cfg.Balances.Owed)

	protected.Get("/admin/best-profession", cfg.Admin.BestProfession)
	protected.Get("/admin/best-clients", cfg.Admin.BestClients)
}
