package service

import (
	"context"
	"errors"

	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// storeError converts err into a DomainError. An expired deadline becomes a
// timeout; domain errors pass through.
func storeError(ctx context.Context, err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = apperrors.NewTimeout(err)
	}
	return apperrors.ToDomainError(apperrors.FromStore(err))
}
