package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/api/dto"
	"github.com/marketplace-ledger/ledger-service/internal/service"
)

// ContractsHandler exposes read-only contract and job listings.
type ContractsHandler struct {
	service *service.ContractService
}

// NewContractsHandler constructs handler.
func NewContractsHandler(contractService *service.ContractService) *ContractsHandler {
	return &ContractsHandler{service: contractService}
}

// GetContract GET /contracts/:id.
func (h *ContractsHandler) GetContract(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	contract, err := h.service.GetContract(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContractResponse(contract)})
}

// ListContracts GET /contracts.
func (h *ContractsHandler) ListContracts(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	contracts, err := h.service.ListContracts(c.UserContext(), identity)
	if err != nil {
		return err
	}
	items := make([]dto.ContractResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, dto.NewContractResponse(&contracts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUnpaidJobs GET /jobs/unpaid.
func (h *ContractsHandler) ListUnpaidJobs(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListUnpaidJobs(c.UserContext(), identity)
	if err != nil {
		return err
	}
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, dto.NewJobResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
