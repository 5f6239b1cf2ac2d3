package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

func TestProfileGetByID(t *testing.T) {
	mock := newMock(t)
	rows := pgxmock.NewRows([]string{"id", "first_name", "last_name", "profession", "balance", "type", "created_at", "updated_at"}).
		AddRow(int64(1), "Harry", "Potter", "Wizard", int64(115000), "client", createdAt, createdAt)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id=$1")).WithArgs(int64(1)).WillReturnRows(rows)

	profile, err := NewProfileRepository(mock).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Harry Potter", profile.FullName())
	assert.Equal(t, domain.Money(115000), profile.Balance)
	assert.Equal(t, domain.ProfileTypeClient, profile.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id=$1")).WithArgs(int64(42)).WillReturnError(pgx.ErrNoRows)

	_, err := NewProfileRepository(mock).GetByID(context.Background(), 42)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAdjustBalanceIsAtomicIncrement(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SET balance = balance + $1")).
		WithArgs(int64(-6000), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(4000)))

	balance, err := NewProfileRepository(mock).AdjustBalance(context.Background(), 1, -6000)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(4000), balance)
	require.NoError(t, mock.ExpectationsWereMet())
}
