package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// JobRepository encapsulates job persistence.
type JobRepository interface {
	LockForPayment(ctx context.Context, jobID int64) (*domain.PaymentTarget, error)
	MarkPaid(ctx context.Context, jobID int64, paidAt time.Time) (bool, error)
	SumUnpaidForClient(ctx context.Context, clientID int64) (domain.Money, error)
	ListUnpaidByParty(ctx context.Context, profileID int64) ([]domain.Job, error)
}

type jobRepository struct {
	db DBTX
}

// NewJobRepository instantiates repository.
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepository{db: db}
}

// LockForPayment loads the job with its contract and both parties' balances,
// holding row locks on the job and both profiles until the transaction ends.
func (r *jobRepository) LockForPayment(ctx context.Context, jobID int64) (*domain.PaymentTarget, error) {
	const query = `
        SELECT j.id, j.contract_id, j.description, j.price, COALESCE(j.paid, FALSE), j.payment_date,
               j.created_at, j.updated_at,
               c.status, cl.id, cl.balance, co.id, co.balance
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        JOIN profiles cl ON cl.id = c.client_id
        JOIN profiles co ON co.id = c.contractor_id
        WHERE j.id=$1
        FOR UPDATE OF j, cl, co`

	var (
		target            domain.PaymentTarget
		price             int64
		status            string
		clientBalance     int64
		contractorBalance int64
	)
	if err := r.db.QueryRow(ctx, query, jobID).Scan(
		&target.Job.ID,
		&target.Job.ContractID,
		&target.Job.Description,
		&price,
		&target.Job.Paid,
		&target.Job.PaymentDate,
		&target.Job.CreatedAt,
		&target.Job.UpdatedAt,
		&status,
		&target.ClientID,
		&clientBalance,
		&target.ContractorID,
		&contractorBalance,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, err
	}
	target.Job.Price = domain.Money(price)
	target.ContractStatus = domain.ContractStatus(status)
	target.ClientBalance = domain.Money(clientBalance)
	target.ContractorBalance = domain.Money(contractorBalance)
	return &target, nil
}

// MarkPaid flips the paid latch. It reports false when the job was already
// paid, so a lost race never pays twice.
func (r *jobRepository) MarkPaid(ctx context.Context, jobID int64, paidAt time.Time) (bool, error) {
	const query = `
        UPDATE jobs SET paid = TRUE, payment_date = $1, updated_at = NOW()
        WHERE id=$2 AND paid IS NOT TRUE`

	cmd, err := r.db.Exec(ctx, query, paidAt, jobID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// SumUnpaidForClient totals the price of unpaid jobs under the client's
// payable contracts.
func (r *jobRepository) SumUnpaidForClient(ctx context.Context, clientID int64) (domain.Money, error) {
	const query = `
        SELECT COALESCE(SUM(j.price), 0)::BIGINT
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        WHERE c.client_id=$1 AND c.status=$2 AND j.paid IS NOT TRUE`

	var total int64
	if err := r.db.QueryRow(ctx, query, clientID, string(domain.ContractStatusInProgress)).Scan(&total); err != nil {
		return 0, err
	}
	return domain.Money(total), nil
}

func (r *jobRepository) ListUnpaidByParty(ctx context.Context, profileID int64) ([]domain.Job, error) {
	const query = `
        SELECT j.id, j.contract_id, j.description, j.price, COALESCE(j.paid, FALSE), j.payment_date,
               j.created_at, j.updated_at
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        WHERE (c.client_id=$1 OR c.contractor_id=$1) AND c.status=$2 AND j.paid IS NOT TRUE
        ORDER BY j.id`

	rows, err := r.db.Query(ctx, query, profileID, string(domain.ContractStatusInProgress))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Job{}
	for rows.Next() {
		var (
			job   domain.Job
			price int64
		)
		if err := rows.Scan(
			&job.ID,
			&job.ContractID,
			&job.Description,
			&price,
			&job.Paid,
			&job.PaymentDate,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		job.Price = domain.Money(price)
		result = append(result, job)
	}
	return result, rows.Err()
}
