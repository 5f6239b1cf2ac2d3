package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// Locker serializes work on a key. The release func must be safe to call
// even when Acquire failed.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// PaymentService moves money from a client to a contractor when a job is paid.
type PaymentService struct {
	store       repository.Store
	locker      Locker
	logger      *zap.Logger
	metrics     *observability.Metrics
	txTimeout   time.Duration
	lockTTL     time.Duration
	maxAttempts int
	now         func() time.Time
}

// PaymentDependencies bundles collaborators for the payment service.
type PaymentDependencies struct {
	Store   repository.Store
	Locker  Locker
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Config  config.LedgerConfig
	Clock   func() time.Time
}

// NewPaymentService constructs the service.
func NewPaymentService(deps PaymentDependencies) *PaymentService {
	s := &PaymentService{
		store:       deps.Store,
		locker:      deps.Locker,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		txTimeout:   deps.Config.TxTimeout(),
		lockTTL:     deps.Config.LockTTL(),
		maxAttempts: deps.Config.PayMaxAttempts,
		now:         deps.Clock,
	}
	if s.locker == nil {
		s.locker = noopLocker{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// PayJob debits the contract's client, credits its contractor and marks the
// job paid in one serializable transaction. Serialization failures rerun the
// whole unit up to the configured attempt count.
func (s *PaymentService) PayJob(ctx context.Context, requester domain.Identity, jobID int64) (*domain.PaymentReceipt, error) {
	if jobID <= 0 {
		return nil, apperrors.NewInvalidArgument("job id must be a positive integer", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	release, err := s.locker.Acquire(ctx, jobLockKey(jobID), s.lockTTL)
	defer release()
	if err != nil {
		s.metrics.RecordLedgerOp("pay_job", apperrors.CodeConflict)
		return nil, apperrors.NewConflict("payment for this job is already in progress", map[string]any{"job_id": jobID})
	}

	for attempt := 1; ; attempt++ {
		receipt, err := s.payOnce(ctx, requester, jobID)
		if err == nil {
			s.metrics.RecordLedgerOp("pay_job", "ok")
			s.logger.Info("job paid",
				zap.Int64("job_id", receipt.JobID),
				zap.Int64("client_id", receipt.ClientID),
				zap.Int64("contractor_id", receipt.ContractorID),
				zap.Stringer("amount", receipt.Amount),
				zap.Int("attempt", attempt))
			return receipt, nil
		}

		if !apperrors.IsRetryable(err) || ctx.Err() != nil {
			return nil, s.fail(ctx, jobID, err)
		}
		if attempt >= s.maxAttempts {
			s.metrics.RecordLedgerOp("pay_job", apperrors.CodeConflict)
			s.logger.Warn("job payment retries exhausted", zap.Int64("job_id", jobID), zap.Int("attempts", attempt), zap.Error(err))
			return nil, apperrors.NewConflict("job payment conflicted with a concurrent update", map[string]any{
				"job_id":   jobID,
				"attempts": attempt,
			})
		}
		s.logger.Warn("retrying job payment", zap.Int64("job_id", jobID), zap.Int("attempt", attempt), zap.Error(err))
	}
}

func (s *PaymentService) payOnce(ctx context.Context, requester domain.Identity, jobID int64) (*domain.PaymentReceipt, error) {
	var receipt *domain.PaymentReceipt
	err := s.store.WithTx(ctx, repository.TxSerializable, func(ctx context.Context, tx repository.Repositories) error {
		target, err := tx.Jobs().LockForPayment(ctx, jobID)
		if err != nil {
			return err
		}
		if target.ClientID != requester.ProfileID {
			return apperrors.NewForbidden("only the contract's client can pay this job")
		}
		if target.Job.Paid {
			return apperrors.NewAlreadyPaid(jobID)
		}
		if !target.ContractStatus.Payable() {
			return apperrors.NewContractNotPayable(target.Job.ContractID, string(target.ContractStatus))
		}

		price := target.Job.Price
		if target.ClientBalance < price {
			return apperrors.NewInsufficientFunds(map[string]any{
				"job_id": jobID,
				"price":  price.String(),
			})
		}

		paidAt := s.now().UTC()
		marked, err := tx.Jobs().MarkPaid(ctx, jobID, paidAt)
		if err != nil {
			return err
		}
		if !marked {
			return apperrors.NewAlreadyPaid(jobID)
		}

		clientBalance, err := tx.Profiles().AdjustBalance(ctx, target.ClientID, -price)
		if err != nil {
			return err
		}
		contractorBalance, err := tx.Profiles().AdjustBalance(ctx, target.ContractorID, price)
		if err != nil {
			return err
		}

		receipt = &domain.PaymentReceipt{
			JobID:             jobID,
			ContractID:        target.Job.ContractID,
			ClientID:          target.ClientID,
			ContractorID:      target.ContractorID,
			Amount:            price,
			ClientBalance:     clientBalance,
			ContractorBalance: contractorBalance,
			PaidAt:            paidAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *PaymentService) fail(ctx context.Context, jobID int64, err error) error {
	domainErr := storeError(ctx, err)
	s.metrics.RecordLedgerOp("pay_job", domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("job payment failed", zap.Int64("job_id", jobID), zap.Error(err))
	}
	return domainErr
}

func jobLockKey(jobID int64) string {
	return "ledger:lock:job:" + strconv.FormatInt(jobID, 10)
}
