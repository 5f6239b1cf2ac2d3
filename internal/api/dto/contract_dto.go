package dto

import (
	"time"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
)

// ContractResponse represents a contract.
type ContractResponse struct {
	ID           int64                 `json:"id"`
	Terms        string                `json:"terms"`
	Status       domain.ContractStatus `json:"status"`
	ClientID     int64                 `json:"client_id"`
	ContractorID int64                 `json:"contractor_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// JobResponse represents a job.
type JobResponse struct {
	ID          int64        `json:"id"`
	ContractID  int64        `json:"contract_id"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Paid        bool         `json:"paid"`
	PaymentDate *time.Time   `json:"payment_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewContractResponse maps a domain contract.
func NewContractResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		Terms:        c.Terms,
		Status:       c.Status,
		ClientID:     c.ClientID,
		ContractorID: c.ContractorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewJobResponse maps a domain job.
func NewJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		ContractID:  j.ContractID,
		Description: j.Description,
		Price:       j.Price,
		Paid:        j.Paid,
		PaymentDate: j.PaymentDate,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
