package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/api/dto"
	"github.com/marketplace-ledger/ledger-service/internal/service"
)

// PaymentsHandler exposes job payment.
type PaymentsHandler struct {
	service *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(paymentService *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{service: paymentService}
}

// PayJob POST /jobs/:job_id/pay.
func (h *PaymentsHandler) PayJob(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	jobID, err := parseIDParam(c, "job_id")
	if err != nil {
		return err
	}

	receipt, err := h.service.PayJob(c.UserContext(), identity, jobID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentResponse{
		Message: "Successfully paid for the job",
		Receipt: *receipt,
	}})
}
