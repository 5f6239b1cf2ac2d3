package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/api/dto"
	"github.com/marketplace-ledger/ledger-service/internal/service"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// BalancesHandler exposes deposits and owed amounts.
type BalancesHandler struct {
	service *service.DepositService
}

// NewBalancesHandler constructs handler.
func NewBalancesHandler(depositService *service.DepositService) *BalancesHandler {
	return &BalancesHandler{service: depositService}
}

// Deposit POST /balances/deposit/:userId.
func (h *BalancesHandler) Deposit(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	clientID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	var req dto.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidAmount("amount must be a decimal number with at most two decimal places")
	}
	if req.Amount == nil {
		return apperrors.NewInvalidAmount("amount is missing")
	}

	receipt, err := h.service.Deposit(c.UserContext(), identity, clientID, *req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepositResponse{
		Message: "Balance added successfully",
		Receipt: *receipt,
	}})
}

// Owed GET /balances/:userId/owed.
func (h *BalancesHandler) Owed(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	clientID, err := parseIDParam(c, "userId")
	if err != nil {
		return err
	}

	summary, err := h.service.OwedAmount(c.UserContext(), identity, clientID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
