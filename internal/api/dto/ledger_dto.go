package dto

import "github.com/marketplace-ledger/ledger-service/internal/domain"

// DepositRequest payload. Amount is a decimal in major units, e.g. 40.25.
type DepositRequest struct {
	Amount *domain.Money `json:"amount"`
}

// PaymentResponse describes a paid job.
type PaymentResponse struct {
	Message string                `json:"message"`
	Receipt domain.PaymentReceipt `json:"receipt"`
}

// DepositResponse describes a credited balance.
type DepositResponse struct {
	Message string                `json:"message"`
	Receipt domain.DepositReceipt `json:"receipt"`
}

// BestClientsQuery mirrors the accepted query parameters.
type BestClientsQuery struct {
	Start string `query:"start"`
	End   string `query:"end"`
	Limit string `query:"limit"`
}
