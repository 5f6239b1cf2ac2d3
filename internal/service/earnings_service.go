package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/repository"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// MaxBestClientsLimit bounds the best-clients ranking size.
const MaxBestClientsLimit = 100

const dateLayout = "2006-01-02"

// EarningsService ranks professions and clients by paid job totals.
type EarningsService struct {
	reports      repository.ReportRepository
	logger       *zap.Logger
	timeout      time.Duration
	defaultLimit int
}

// EarningsDependencies bundles collaborators for the earnings service.
type EarningsDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
	Config config.LedgerConfig
}

// NewEarningsService constructs the service.
func NewEarningsService(deps EarningsDependencies) *EarningsService {
	s := &EarningsService{
		reports:      deps.Store.Reports(),
		logger:       deps.Logger,
		timeout:      deps.Config.TxTimeout(),
		defaultLimit: deps.Config.BestClientsLimit,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.defaultLimit <= 0 || s.defaultLimit > MaxBestClientsLimit {
		s.defaultLimit = 2
	}
	return s
}

// DefaultLimit is the best-clients size used when none is requested.
func (s *EarningsService) DefaultLimit() int {
	return s.defaultLimit
}

// BestProfession returns the contractor profession that earned the most from
// paid jobs created inside window. Ties go to the alphabetically first name.
func (s *EarningsService) BestProfession(ctx context.Context, window domain.DateWindow) (*domain.ProfessionEarnings, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	best, err := s.reports.BestProfession(ctx, window)
	if err != nil {
		return nil, s.fail(ctx, "best_profession", err)
	}
	return best, nil
}

// BestClients returns up to limit clients ranked by what they paid for jobs
// created inside window, ties broken by lower client id.
func (s *EarningsService) BestClients(ctx context.Context, window domain.DateWindow, limit int) ([]domain.ClientPayments, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxBestClientsLimit {
		return nil, apperrors.NewInvalidArgument("limit must be between 1 and 100", map[string]any{"limit": limit})
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	clients, err := s.reports.BestClients(ctx, window, limit)
	if err != nil {
		return nil, s.fail(ctx, "best_clients", err)
	}
	return clients, nil
}

func (s *EarningsService) fail(ctx context.Context, op string, err error) error {
	domainErr := storeError(ctx, err)
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("earnings report failed", zap.String("op", op), zap.Error(err))
	}
	return domainErr
}

// ParseWindow parses an inclusive reporting window. Bounds accept RFC3339 or
// YYYY-MM-DD and a date-only end covers the whole day. Omitting both yields
// the all-time window; omitting only one is an error.
func ParseWindow(startRaw, endRaw string) (domain.DateWindow, error) {
	if strings.TrimSpace(startRaw) == "" && strings.TrimSpace(endRaw) == "" {
		return domain.DateWindow{}, nil
	}
	start, _, err := parseBound("start", startRaw)
	if err != nil {
		return domain.DateWindow{}, err
	}
	end, dateOnly, err := parseBound("end", endRaw)
	if err != nil {
		return domain.DateWindow{}, err
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	window := domain.DateWindow{Start: start, End: end}
	if err := validateWindow(window); err != nil {
		return domain.DateWindow{}, err
	}
	return window, nil
}

// ParseLimit parses the best-clients limit, falling back to def when raw is
// empty. Anything but an integer in [1, MaxBestClientsLimit] is rejected.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxBestClientsLimit {
		return 0, apperrors.NewInvalidArgument("limit must be an integer between 1 and 100", map[string]any{"limit": raw})
	}
	return limit, nil
}

func parseBound(name, raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, apperrors.NewInvalidArgument("start and end must be given together", map[string]any{"missing": name})
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, apperrors.NewInvalidArgument(name+" must be RFC3339 or YYYY-MM-DD", map[string]any{name: raw})
}

func validateWindow(window domain.DateWindow) error {
	if window.Unbounded() {
		return nil
	}
	if window.Start.IsZero() || window.End.IsZero() {
		return apperrors.NewInvalidArgument("start and end must be given together", nil)
	}
	if window.Start.After(window.End) {
		return apperrors.NewInvalidArgument("start must not be after end", map[string]any{
			"start": window.Start,
			"end":   window.End,
		})
	}
	return nil
}
