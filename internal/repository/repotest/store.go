// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// tables is a copy-on-write snapshot of the ledger tables.
type tables struct {
	profiles  map[int64]domain.Profile
	contracts map[int64]domain.Contract
	jobs      map[int64]domain.Job
}

func (s *tables) clone() *tables {
	c := &tables{
		profiles:  make(map[int64]domain.Profile, len(s.profiles)),
		contracts: make(map[int64]domain.Contract, len(s.contracts)),
		jobs:      make(map[int64]domain.Job, len(s.jobs)),
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	return c
}

// Store implements repository.Store. Transactions run one at a time on a
// private copy that replaces the shared state on commit.
type Store struct {
	mu    sync.Mutex
	state *tables

	// lockErrs are returned, in order, by LockForPayment before it succeeds.
	lockErrs []error
	txOpts   []pgx.TxOptions
	// markLost counts MarkPaid calls that will report the job as already
	// settled by another transaction.
	markLost int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: &tables{
		profiles:  map[int64]domain.Profile{},
		contracts: map[int64]domain.Contract{},
		jobs:      map[int64]domain.Job{},
	}}
}

// AddProfile seeds a profile.
func (s *Store) AddProfile(p domain.Profile) *Store {
	s.state.profiles[p.ID] = p
	return s
}

// AddContract seeds a contract.
func (s *Store) AddContract(c domain.Contract) *Store {
	s.state.contracts[c.ID] = c
	return s
}

// AddJob seeds a job. A zero CreatedAt defaults to 2024-01-10 12:00 UTC.
func (s *Store) AddJob(j domain.Job) *Store {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	s.state.jobs[j.ID] = j
	return s
}

// Profile returns the committed profile row.
func (s *Store) Profile(id int64) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.profiles[id]
}

// Job returns the committed job row.
func (s *Store) Job(id int64) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.jobs[id]
}

// FailLockWith makes the next LockForPayment calls return errs, one per call.
func (s *Store) FailLockWith(errs ...error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockErrs = append(s.lockErrs, errs...)
	return s
}

// LoseNextMarkPaid makes the next MarkPaid report that a concurrent
// transaction settled the job after it was read, leaving the job unchanged.
func (s *Store) LoseNextMarkPaid() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markLost++
	return s
}

// TxOptions lists the options of every transaction started so far.
func (s *Store) TxOptions() []pgx.TxOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pgx.TxOptions(nil), s.txOpts...)
}

func (s *Store) live() repos {
	return repos{store: s, autoLock: true}
}

func (s *Store) Profiles() repository.ProfileRepository   { return s.live().Profiles() }
func (s *Store) Contracts() repository.ContractRepository { return s.live().Contracts() }
func (s *Store) Jobs() repository.JobRepository           { return s.live().Jobs() }
func (s *Store) Reports() repository.ReportRepository     { return s.live().Reports() }

func (s *Store) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txOpts = append(s.txOpts, opts)

	staged := s.state.clone()
	if err := fn(ctx, repos{store: s, state: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// repos reads either a transaction's staged copy or, with autoLock, the
// shared state under the store mutex.
type repos struct {
	store    *Store
	state    *tables
	autoLock bool
}

func (r repos) Profiles() repository.ProfileRepository   { return profiles{r} }
func (r repos) Contracts() repository.ContractRepository { return contracts{r} }
func (r repos) Jobs() repository.JobRepository           { return jobs{r} }
func (r repos) Reports() repository.ReportRepository     { return reports{r} }

type (
	profiles  struct{ repos }
	contracts struct{ repos }
	jobs      struct{ repos }
	reports   struct{ repos }
)

func (r repos) view() (*tables, func()) {
	if !r.autoLock {
		return r.state, func() {}
	}
	r.store.mu.Lock()
	return r.store.state, r.store.mu.Unlock
}

func (r profiles) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	st, done := r.view()
	defer done()
	p, ok := st.profiles[id]
	if !ok {
		return nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": id})
	}
	return &p, nil
}

func (r profiles) AdjustBalance(ctx context.Context, id int64, delta domain.Money) (domain.Money, error) {
	st, done := r.view()
	defer done()
	p, ok := st.profiles[id]
	if !ok {
		return 0, apperrors.NewNotFound("profile", map[string]any{"profile_id": id})
	}
	if p.Balance+delta < 0 {
		return 0, &pgconn.PgError{Code: "23514", Message: "balance_non_negative"}
	}
	p.Balance += delta
	st.profiles[id] = p
	return p.Balance, nil
}

func (r contracts) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	st, done := r.view()
	defer done()
	c, ok := st.contracts[id]
	if !ok {
		return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": id})
	}
	return &c, nil
}

func (r contracts) ListNonTerminatedByParty(ctx context.Context, profileID int64) ([]domain.Contract, error) {
	st, done := r.view()
	defer done()
	out := []domain.Contract{}
	for _, c := range st.contracts {
		if c.IsParty(profileID) && c.Status != domain.ContractStatusTerminated {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r jobs) LockForPayment(ctx context.Context, jobID int64) (*domain.PaymentTarget, error) {
	if len(r.store.lockErrs) > 0 {
		err := r.store.lockErrs[0]
		r.store.lockErrs = r.store.lockErrs[1:]
		return nil, err
	}
	st, done := r.view()
	defer done()
	job, ok := st.jobs[jobID]
	if !ok {
		return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
	}
	contract := st.contracts[job.ContractID]
	return &domain.PaymentTarget{
		Job:               job,
		ContractStatus:    contract.Status,
		ClientID:          contract.ClientID,
		ClientBalance:     st.profiles[contract.ClientID].Balance,
		ContractorID:      contract.ContractorID,
		ContractorBalance: st.profiles[contract.ContractorID].Balance,
	}, nil
}

func (r jobs) MarkPaid(ctx context.Context, jobID int64, paidAt time.Time) (bool, error) {
	st, done := r.view()
	defer done()
	if r.store.markLost > 0 {
		r.store.markLost--
		return false, nil
	}
	job, ok := st.jobs[jobID]
	if !ok || job.Paid {
		return false, nil
	}
	job.Paid = true
	job.PaymentDate = &paidAt
	st.jobs[jobID] = job
	return true, nil
}

func (r jobs) SumUnpaidForClient(ctx context.Context, clientID int64) (domain.Money, error) {
	st, done := r.view()
	defer done()
	var total domain.Money
	for _, j := range st.jobs {
		c := st.contracts[j.ContractID]
		if c.ClientID == clientID && c.Status == domain.ContractStatusInProgress && !j.Paid {
			total += j.Price
		}
	}
	return total, nil
}

func (r jobs) ListUnpaidByParty(ctx context.Context, profileID int64) ([]domain.Job, error) {
	st, done := r.view()
	defer done()
	out := []domain.Job{}
	for _, j := range st.jobs {
		c := st.contracts[j.ContractID]
		if c.IsParty(profileID) && c.Status == domain.ContractStatusInProgress && !j.Paid {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r repos) paidInWindow(st *tables, window domain.DateWindow, each func(job domain.Job, c domain.Contract)) {
	for _, j := range st.jobs {
		if !j.Paid || !window.Contains(j.CreatedAt) {
			continue
		}
		each(j, st.contracts[j.ContractID])
	}
}

func (r reports) BestProfession(ctx context.Context, window domain.DateWindow) (*domain.ProfessionEarnings, error) {
	st, done := r.view()
	defer done()
	totals := map[string]domain.Money{}
	r.paidInWindow(st, window, func(j domain.Job, c domain.Contract) {
		totals[st.profiles[c.ContractorID].Profession] += j.Price
	})
	if len(totals) == 0 {
		return nil, apperrors.NewNotFound("paid jobs in window", nil)
	}
	var best *domain.ProfessionEarnings
	for name, total := range totals {
		if best == nil || total > best.Total || (total == best.Total && name < best.Profession) {
			best = &domain.ProfessionEarnings{Profession: name, Total: total}
		}
	}
	return best, nil
}

func (r reports) BestClients(ctx context.Context, window domain.DateWindow, limit int) ([]domain.ClientPayments, error) {
	st, done := r.view()
	defer done()
	totals := map[int64]domain.Money{}
	r.paidInWindow(st, window, func(j domain.Job, c domain.Contract) {
		totals[c.ClientID] += j.Price
	})
	out := []domain.ClientPayments{}
	for id, paid := range totals {
		p := st.profiles[id]
		out = append(out, domain.ClientPayments{ID: id, FullName: p.FullName(), Paid: paid})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Paid != out[j].Paid {
			return out[i].Paid > out[j].Paid
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.Store = (*Store)(nil)
