package domain

import "time"

// Job is a billable unit of work under a contract. Paid is a one-way latch.
type Job struct {
	ID          int64
	ContractID  int64
	Description string
	Price       Money
	Paid        bool
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentTarget is a job loaded together with everything PayJob touches,
// read under row locks inside the payment transaction.
type PaymentTarget struct {
	Job               Job
	ContractStatus    ContractStatus
	ClientID          int64
	ClientBalance     Money
	ContractorID      int64
	ContractorBalance Money
}

// PaymentReceipt describes a committed job payment.
type PaymentReceipt struct {
	JobID             int64     `json:"job_id"`
	ContractID        int64     `json:"contract_id"`
	ClientID          int64     `json:"client_id"`
	ContractorID      int64     `json:"contractor_id"`
	Amount            Money     `json:"amount"`
	ClientBalance     Money     `json:"client_balance"`
	ContractorBalance Money     `json:"contractor_balance"`
	PaidAt            time.Time `json:"paid_at"`
}

// DepositReceipt describes a committed deposit.
type DepositReceipt struct {
	ClientID   int64 `json:"client_id"`
	Amount     Money `json:"amount"`
	NewBalance Money `json:"balance"`
	Cap        Money `json:"cap"`
}

// OwedSummary is what a client currently owes and the deposit cap it implies.
type OwedSummary struct {
	ClientID int64 `json:"client_id"`
	Owed     Money `json:"owed"`
	Cap      Money `json:"cap"`
}
