package service

import (
	"context"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// ContractService serves read-only contract and job listings to the parties
// of a contract.
type ContractService struct {
	contracts repository.ContractRepository
	jobs      repository.JobRepository
}

// NewContractService constructs the service.
func NewContractService(store repository.Store) *ContractService {
	return &ContractService{contracts: store.Contracts(), jobs: store.Jobs()}
}

// GetContract returns the contract when the caller is one of its parties.
// Contracts of other profiles are reported as not found.
func (s *ContractService) GetContract(ctx context.Context, caller domain.Identity, contractID int64) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, storeError(ctx, err)
	}
	if !contract.IsParty(caller.ProfileID) {
		return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": contractID})
	}
	return contract, nil
}

// ListContracts returns the caller's contracts that are not terminated.
func (s *ContractService) ListContracts(ctx context.Context, caller domain.Identity) ([]domain.Contract, error) {
	contracts, err := s.contracts.ListNonTerminatedByParty(ctx, caller.ProfileID)
	if err != nil {
		return nil, storeError(ctx, err)
	}
	return contracts, nil
}

// ListUnpaidJobs returns unpaid jobs under the caller's in-progress contracts.
func (s *ContractService) ListUnpaidJobs(ctx context.Context, caller domain.Identity) ([]domain.Job, error) {
	jobs, err := s.jobs.ListUnpaidByParty(ctx, caller.ProfileID)
	if err != nil {
		return nil, storeError(ctx, err)
	}
	return jobs, nil
}
