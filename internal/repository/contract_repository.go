package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// ContractRepository encapsulates contract reads.
type ContractRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Contract, error)
	ListNonTerminatedByParty(ctx context.Context, profileID int64) ([]domain.Contract, error)
}

type contractRepository struct {
	db DBTX
}

// NewContractRepository instantiates repository.
func NewContractRepository(db DBTX) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	const query = `
        SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
        FROM contracts WHERE id=$1`

	contract, err := scanContract(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": id})
		}
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) ListNonTerminatedByParty(ctx context.Context, profileID int64) ([]domain.Contract, error) {
	const query = `
        SELECT id, terms, status, client_id, contractor_id, created_at, updated_at
        FROM contracts
        WHERE (client_id=$1 OR contractor_id=$1) AND status <> $2
        ORDER BY id`

	rows, err := r.db.Query(ctx, query, profileID, string(domain.ContractStatusTerminated))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContracts(rows)
}

func scanContracts(rows pgx.Rows) ([]domain.Contract, error) {
	result := []domain.Contract{}
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

func scanContract(row pgx.Row) (domain.Contract, error) {
	var (
		contract domain.Contract
		status   string
	)
	if err := row.Scan(
		&contract.ID,
		&contract.Terms,
		&status,
		&contract.ClientID,
		&contract.ContractorID,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return domain.Contract{}, err
	}
	contract.Status = domain.ContractStatus(status)
	return contract, nil
}
