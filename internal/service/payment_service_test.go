package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	"github.com/marketplace-ledger/ledger-service/internal/repository/repotest"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

const (
	clientID     int64 = 1
	contractorID int64 = 2
	outsiderID   int64 = 3
	contractID   int64 = 10
	jobID        int64 = 100
)

var (
	fixedNow   = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	testLedger = config.LedgerConfig{
		TxTimeoutMillis:  1000,
		PayMaxAttempts:   3,
		LockTTLMillis:    1000,
		BestClientsLimit: 2,
	}
	asClient     = domain.Identity{ProfileID: clientID, Type: domain.ProfileTypeClient}
	asContractor = domain.Identity{ProfileID: contractorID, Type: domain.ProfileTypeContractor}
)

func money(t *testing.T, raw string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(raw)
	require.NoError(t, err)
	return m
}

// seedPayment builds a client, a contractor, one contract and one unpaid job.
func seedPayment(t *testing.T, balance, price string, status domain.ContractStatus) *repotest.Store {
	t.Helper()
	return repotest.NewStore().
		AddProfile(domain.Profile{ID: clientID, FirstName: "Harry", LastName: "Potter", Balance: money(t, balance), Type: domain.ProfileTypeClient}).
		AddProfile(domain.Profile{ID: contractorID, FirstName: "John", LastName: "Lenon", Profession: "Musician", Type: domain.ProfileTypeContractor}).
		AddProfile(domain.Profile{ID: outsiderID, FirstName: "Mr", LastName: "Robot", Balance: money(t, "1000"), Type: domain.ProfileTypeClient}).
		AddContract(domain.Contract{ID: contractID, Status: status, ClientID: clientID, ContractorID: contractorID}).
		AddJob(domain.Job{ID: jobID, ContractID: contractID, Description: "work", Price: money(t, price)})
}

func newPaymentService(store repository.Store, locker Locker, metrics *observability.Metrics) *PaymentService {
	return NewPaymentService(PaymentDependencies{
		Store:   store,
		Locker:  locker,
		Metrics: metrics,
		Config:  testLedger,
		Clock:   func() time.Time { return fixedNow },
	})
}

func TestPayJobMovesFundsAndMarksPaid(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	metrics := observability.NewMetrics()
	svc := newPaymentService(store, nil, metrics)

	receipt, err := svc.PayJob(context.Background(), asClient, jobID)
	require.NoError(t, err)

	assert.Equal(t, jobID, receipt.JobID)
	assert.Equal(t, contractID, receipt.ContractID)
	assert.Equal(t, money(t, "60"), receipt.Amount)
	assert.Equal(t, money(t, "40"), receipt.ClientBalance)
	assert.Equal(t, money(t, "60"), receipt.ContractorBalance)
	assert.Equal(t, fixedNow, receipt.PaidAt)

	assert.Equal(t, money(t, "40"), store.Profile(clientID).Balance)
	assert.Equal(t, money(t, "60"), store.Profile(contractorID).Balance)
	job := store.Job(jobID)
	assert.True(t, job.Paid)
	require.NotNil(t, job.PaymentDate)
	assert.Equal(t, fixedNow, *job.PaymentDate)

	require.Len(t, store.TxOptions(), 1)
	assert.Equal(t, pgx.Serializable, store.TxOptions()[0].IsoLevel)
	assert.Equal(t, int64(1), metrics.Snapshot().Ledger["pay_job|ok"])
}

func TestPayJobAllowsExactBalance(t *testing.T) {
	store := seedPayment(t, "60", "60", domain.ContractStatusInProgress)
	svc := newPaymentService(store, nil, nil)

	receipt, err := svc.PayJob(context.Background(), asClient, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), receipt.ClientBalance)
}

func TestPayJobInsufficientFundsLeavesStateUntouched(t *testing.T) {
	store := seedPayment(t, "50", "60", domain.ContractStatusInProgress)
	svc := newPaymentService(store, nil, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientFunds))

	assert.Equal(t, money(t, "50"), store.Profile(clientID).Balance)
	assert.Equal(t, domain.Money(0), store.Profile(contractorID).Balance)
	assert.False(t, store.Job(jobID).Paid)
}

func TestPayJobTwiceReportsAlreadyPaid(t *testing.T) {
	store := seedPayment(t, "200", "60", domain.ContractStatusInProgress)
	svc := newPaymentService(store, nil, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.NoError(t, err)

	_, err = svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyPaid))
	assert.Equal(t, money(t, "140"), store.Profile(clientID).Balance)
	assert.Equal(t, money(t, "60"), store.Profile(contractorID).Balance)
}

func TestPayJobConcurrentCallsPayExactlyOnce(t *testing.T) {
	store := seedPayment(t, "1000", "60", domain.ContractStatusInProgress)
	svc := newPaymentService(store, nil, nil)

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.PayJob(context.Background(), asClient, jobID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.HasCode(err, apperrors.CodeAlreadyPaid):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, already)
	assert.Equal(t, money(t, "940"), store.Profile(clientID).Balance)
	assert.Equal(t, money(t, "60"), store.Profile(contractorID).Balance)
}

func TestPayJobLosingTheLatchReportsAlreadyPaid(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress).LoseNextMarkPaid()
	metrics := observability.NewMetrics()
	svc := newPaymentService(store, nil, metrics)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyPaid))

	assert.Equal(t, money(t, "100"), store.Profile(clientID).Balance)
	assert.Equal(t, money(t, "0"), store.Profile(contractorID).Balance)
	assert.False(t, store.Job(jobID).Paid)
	assert.Len(t, store.TxOptions(), 1)
	assert.EqualValues(t, 1, metrics.Snapshot().Ledger["pay_job|"+apperrors.CodeAlreadyPaid])
}

func TestPayJobLosingTheLatchRollsBackWithoutMovingFunds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectBeginTx(repository.TxSerializable)
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF j, cl, co")).
		WithArgs(jobID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "contract_id", "description", "price", "paid", "payment_date", "created_at", "updated_at",
			"status", "client_id", "client_balance", "contractor_id", "contractor_balance",
		}).AddRow(
			jobID, contractID, "work", int64(6000), false, (*time.Time)(nil), fixedNow, fixedNow,
			"in_progress", clientID, int64(10000), contractorID, int64(0),
		))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id=$2 AND paid IS NOT TRUE")).
		WithArgs(fixedNow, jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	svc := newPaymentService(repository.NewStore(mock), nil, nil)
	_, err = svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyPaid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayJobRejectsCallersOtherThanTheClient(t *testing.T) {
	for name, who := range map[string]domain.Identity{
		"contractor": asContractor,
		"outsider":   {ProfileID: outsiderID, Type: domain.ProfileTypeClient},
	} {
		t.Run(name, func(t *testing.T) {
			store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
			svc := newPaymentService(store, nil, nil)

			_, err := svc.PayJob(context.Background(), who, jobID)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
			assert.False(t, store.Job(jobID).Paid)
		})
	}
}

func TestPayJobRequiresInProgressContract(t *testing.T) {
	for _, status := range []domain.ContractStatus{domain.ContractStatusNew, domain.ContractStatusTerminated} {
		t.Run(string(status), func(t *testing.T) {
			store := seedPayment(t, "100", "60", status)
			svc := newPaymentService(store, nil, nil)

			_, err := svc.PayJob(context.Background(), asClient, jobID)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeContractNotPayable))
			assert.Equal(t, money(t, "100"), store.Profile(clientID).Balance)
		})
	}
}

func TestPayJobValidatesInput(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	svc := newPaymentService(store, nil, nil)

	_, err := svc.PayJob(context.Background(), asClient, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	_, err = svc.PayJob(context.Background(), asClient, 999)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestPayJobRetriesSerializationFailures(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	store.FailLockWith(
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40P01"},
	)
	svc := newPaymentService(store, nil, nil)

	receipt, err := svc.PayJob(context.Background(), asClient, jobID)
	require.NoError(t, err)
	assert.Equal(t, money(t, "40"), receipt.ClientBalance)
	assert.Len(t, store.TxOptions(), 3)
}

func TestPayJobGivesUpAfterMaxAttempts(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	for i := 0; i < testLedger.PayMaxAttempts; i++ {
		store.FailLockWith(&pgconn.PgError{Code: "40001"})
	}
	svc := newPaymentService(store, nil, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Len(t, store.TxOptions(), testLedger.PayMaxAttempts)
	assert.False(t, store.Job(jobID).Paid)
}

func TestPayJobStoreFailureIsNotRetried(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	store.FailLockWith(errors.New("connection reset"))
	svc := newPaymentService(store, nil, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreFailure))
	assert.Len(t, store.TxOptions(), 1)
}

type stubLocker struct {
	err      error
	keys     []string
	released int
}

func (l *stubLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.keys = append(l.keys, key)
	return func() { l.released++ }, l.err
}

func TestPayJobHoldsJobLock(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	locker := &stubLocker{}
	svc := newPaymentService(store, locker, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger:lock:job:100"}, locker.keys)
	assert.Equal(t, 1, locker.released)
}

func TestPayJobLockContentionIsConflict(t *testing.T) {
	store := seedPayment(t, "100", "60", domain.ContractStatusInProgress)
	locker := &stubLocker{err: errors.New("lock not acquired")}
	svc := newPaymentService(store, locker, nil)

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, store.TxOptions())
	assert.Equal(t, 1, locker.released)
}

// blockingStore never finishes a transaction before the deadline.
type blockingStore struct {
	*repotest.Store
}

func (s blockingStore) WithTx(ctx context.Context, _ pgx.TxOptions, _ func(context.Context, repository.Repositories) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPayJobTimeout(t *testing.T) {
	store := blockingStore{seedPayment(t, "100", "60", domain.ContractStatusInProgress)}
	svc := NewPaymentService(PaymentDependencies{
		Store:  store,
		Config: config.LedgerConfig{TxTimeoutMillis: 20, PayMaxAttempts: 3},
	})

	_, err := svc.PayJob(context.Background(), asClient, jobID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTimeout))
	assert.False(t, store.Job(jobID).Paid)
}
