package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// ReportRepository runs the earnings aggregations. Only jobs with paid = TRUE
// and created_at inside the inclusive window are counted; an unbounded window
// counts every paid job.
type ReportRepository interface {
	BestProfession(ctx context.Context, window domain.DateWindow) (*domain.ProfessionEarnings, error)
	BestClients(ctx context.Context, window domain.DateWindow, limit int) ([]domain.ClientPayments, error)
}

type reportRepository struct {
	db DBTX
}

// NewReportRepository instantiates repository.
func NewReportRepository(db DBTX) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) BestProfession(ctx context.Context, window domain.DateWindow) (*domain.ProfessionEarnings, error) {
	const query = `
        SELECT co.profession, SUM(j.price)::BIGINT AS total
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        JOIN profiles co ON co.id = c.contractor_id
        WHERE j.paid IS TRUE AND ($1::timestamptz IS NULL OR j.created_at BETWEEN $1 AND $2)
        GROUP BY co.profession
        ORDER BY total DESC, co.profession ASC
        LIMIT 1`

	var (
		result domain.ProfessionEarnings
		total  int64
	)
	start, end := windowArgs(window)
	if err := r.db.QueryRow(ctx, query, start, end).Scan(&result.Profession, &total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("paid jobs in window", map[string]any{
				"start": window.Start,
				"end":   window.End,
			})
		}
		return nil, err
	}
	result.Total = domain.Money(total)
	return &result, nil
}

func (r *reportRepository) BestClients(ctx context.Context, window domain.DateWindow, limit int) ([]domain.ClientPayments, error) {
	const query = `
        SELECT cl.id, cl.first_name, cl.last_name, SUM(j.price)::BIGINT AS paid
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        JOIN profiles cl ON cl.id = c.client_id
        WHERE j.paid IS TRUE AND ($1::timestamptz IS NULL OR j.created_at BETWEEN $1 AND $2)
        GROUP BY cl.id, cl.first_name, cl.last_name
        ORDER BY paid DESC, cl.id ASC
        LIMIT $3`

	start, end := windowArgs(window)
	rows, err := r.db.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ClientPayments{}
	for rows.Next() {
		var (
			profile domain.Profile
			paid    int64
		)
		if err := rows.Scan(&profile.ID, &profile.FirstName, &profile.LastName, &paid); err != nil {
			return nil, err
		}
		result = append(result, domain.ClientPayments{
			ID:       profile.ID,
			FullName: profile.FullName(),
			Paid:     domain.Money(paid),
		})
	}
	return result, rows.Err()
}

// windowArgs binds an unbounded window as NULL bounds.
func windowArgs(w domain.DateWindow) (start, end any) {
	if w.Unbounded() {
		return nil, nil
	}
	return w.Start, w.End
}
