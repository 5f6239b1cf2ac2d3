package domain

import "time"

// ContractStatus enumerates the lifecycle of a contract.
type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Payable reports whether jobs under a contract in this status may be paid
// or counted as owed.
func (s ContractStatus) Payable() bool {
	return s == ContractStatusInProgress
}

// Contract binds one client to one contractor.
type Contract struct {
	ID           int64
	Terms        string
	Status       ContractStatus
	ClientID     int64
	ContractorID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsParty reports whether the profile is the client or the contractor.
func (c *Contract) IsParty(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
