package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a DBTX that can open transactions.
type DB interface {
	DBTX
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Repositories groups the ledger repositories bound to one handle.
type Repositories interface {
	Profiles() ProfileRepository
	Contracts() ContractRepository
	Jobs() JobRepository
	Reports() ReportRepository
}

// Store is the ledger persistence facade. Reads outside WithTx use the pool
// directly.
type Store interface {
	Repositories
	WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx Repositories) error) error
}

// Common transaction options.
var (
	TxSerializable  = pgx.TxOptions{IsoLevel: pgx.Serializable}
	TxReadCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
)

type boundRepositories struct {
	db DBTX
}

func (b boundRepositories) Profiles() ProfileRepository   { return NewProfileRepository(b.db) }
func (b boundRepositories) Contracts() ContractRepository { return NewContractRepository(b.db) }
func (b boundRepositories) Jobs() JobRepository           { return NewJobRepository(b.db) }
func (b boundRepositories) Reports() ReportRepository     { return NewReportRepository(b.db) }

type pgStore struct {
	boundRepositories
	db DB
}

// NewStore returns a Postgres-backed Store.
func NewStore(db DB) Store {
	return &pgStore{boundRepositories: boundRepositories{db: db}, db: db}
}

func (s *pgStore) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx Repositories) error) error {
	return WithTx(ctx, s.db, opts, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, boundRepositories{db: tx})
	})
}

// WithTx begins a transaction, runs fn, and commits on success or rolls back
// on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, db DB, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, tx)
	return err
}
