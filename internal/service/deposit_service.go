package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// DepositCapPercent is the share of the outstanding unpaid total a client
// may deposit in one operation.
const DepositCapPercent = 25

// DepositService credits client balances, capped at a share of what the
// client currently owes on unpaid jobs.
type DepositService struct {
	store     repository.Store
	logger    *zap.Logger
	metrics   *observability.Metrics
	txTimeout time.Duration
}

// DepositDependencies bundles collaborators for the deposit service.
type DepositDependencies struct {
	Store   repository.Store
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Config  config.LedgerConfig
}

// NewDepositService constructs the service.
func NewDepositService(deps DepositDependencies) *DepositService {
	s := &DepositService{
		store:     deps.Store,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		txTimeout: deps.Config.TxTimeout(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Deposit adds amount to the client's balance. The owed sum and the credit
// share a read-committed transaction; the credit itself is a single atomic
// increment so racing deposits never lose an update.
func (s *DepositService) Deposit(ctx context.Context, requester domain.Identity, clientID int64, amount domain.Money) (*domain.DepositReceipt, error) {
	if amount <= 0 {
		return nil, apperrors.NewInvalidAmount("amount must be greater than zero")
	}
	if requester.ProfileID != clientID {
		return nil, apperrors.NewForbidden("deposits are only allowed into your own balance")
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var receipt *domain.DepositReceipt
	err := s.store.WithTx(ctx, repository.TxReadCommitted, func(ctx context.Context, tx repository.Repositories) error {
		summary, err := s.owed(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if amount > summary.Cap {
			return apperrors.NewDepositLimitExceeded(
				fmt.Sprintf("you can deposit at most %d%% of your outstanding job payments (limit %s)", DepositCapPercent, summary.Cap),
				map[string]any{"cap": summary.Cap.String(), "cap_percent": DepositCapPercent},
			)
		}

		balance, err := tx.Profiles().AdjustBalance(ctx, clientID, amount)
		if err != nil {
			return err
		}
		receipt = &domain.DepositReceipt{
			ClientID:   clientID,
			Amount:     amount,
			NewBalance: balance,
			Cap:        summary.Cap,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "deposit", clientID, err)
	}

	s.metrics.RecordLedgerOp("deposit", "ok")
	s.logger.Info("balance deposited",
		zap.Int64("client_id", clientID),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", receipt.NewBalance))
	return receipt, nil
}

// OwedAmount reports the client's unpaid total and current deposit cap.
func (s *DepositService) OwedAmount(ctx context.Context, requester domain.Identity, clientID int64) (*domain.OwedSummary, error) {
	if requester.ProfileID != clientID {
		return nil, apperrors.NewForbidden("owed amounts are only visible to the client")
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	summary, err := s.owed(ctx, s.store, clientID)
	if err != nil {
		return nil, s.fail(ctx, "owed_amount", clientID, err)
	}
	return summary, nil
}

func (s *DepositService) owed(ctx context.Context, repos repository.Repositories, clientID int64) (*domain.OwedSummary, error) {
	profile, err := repos.Profiles().GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if profile.Type != domain.ProfileTypeClient {
		return nil, apperrors.NewInvalidArgument("profile is not a client", map[string]any{"profile_id": clientID})
	}

	owed, err := repos.Jobs().SumUnpaidForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &domain.OwedSummary{
		ClientID: clientID,
		Owed:     owed,
		Cap:      owed.Percent(DepositCapPercent),
	}, nil
}

func (s *DepositService) fail(ctx context.Context, op string, clientID int64, err error) error {
	domainErr := storeError(ctx, err)
	s.metrics.RecordLedgerOp(op, domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("ledger operation failed", zap.String("op", op), zap.Int64("client_id", clientID), zap.Error(err))
	}
	return domainErr
}
