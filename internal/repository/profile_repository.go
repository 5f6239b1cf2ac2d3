package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// ProfileRepository defines persistence access for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	AdjustBalance(ctx context.Context, id int64, delta domain.Money) (domain.Money, error)
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	const query = `
        SELECT id, first_name, last_name, profession, balance, type, created_at, updated_at
        FROM profiles WHERE id=$1`

	var (
		profile     domain.Profile
		balance     int64
		profileType string
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Profession,
		&balance,
		&profileType,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"profile_id": id})
		}
		return nil, err
	}
	profile.Balance = domain.Money(balance)
	profile.Type = domain.ProfileType(profileType)
	return &profile, nil
}

// AdjustBalance applies delta atomically in the database and returns the new
// balance. The balance >= 0 constraint is enforced by the table.
func (r *profileRepository) AdjustBalance(ctx context.Context, id int64, delta domain.Money) (domain.Money, error) {
	const query = `
        UPDATE profiles SET balance = balance + $1, updated_at = NOW()
        WHERE id=$2
        RETURNING balance`

	var balance int64
	if err := r.db.QueryRow(ctx, query, int64(delta), id).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("profile", map[string]any{"profile_id": id})
		}
		return 0, err
	}
	return domain.Money(balance), nil
}
