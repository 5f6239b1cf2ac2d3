package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/api/dto"
	"github.com/marketplace-ledger/ledger-service/internal/service"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// AdminHandler exposes earnings reports.
type AdminHandler struct {
	service *service.EarningsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(earningsService *service.EarningsService) *AdminHandler {
	return &AdminHandler{service: earningsService}
}

// BestProfession GET /admin/best-profession?start=&end=.
func (h *AdminHandler) BestProfession(c *fiber.Ctx) error {
	window, err := service.ParseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		return err
	}

	best, err := h.service.BestProfession(c.UserContext(), window)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": best})
}

// BestClients GET /admin/best-clients?start=&end=&limit=.
func (h *AdminHandler) BestClients(c *fiber.Ctx) error {
	var q dto.BestClientsQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewInvalidArgument("invalid query", nil)
	}
	window, err := service.ParseWindow(q.Start, q.End)
	if err != nil {
		return err
	}
	limit, err := service.ParseLimit(q.Limit, h.service.DefaultLimit())
	if err != nil {
		return err
	}

	clients, err := h.service.BestClients(c.UserContext(), window, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clients})
}
