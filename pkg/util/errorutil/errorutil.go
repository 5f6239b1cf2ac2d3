package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes surfaced to callers.
const (
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeAlreadyPaid          = "ALREADY_PAID"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeContractNotPayable   = "CONTRACT_NOT_PAYABLE"
	CodeDepositLimitExceeded = "DEPOSIT_LIMIT_EXCEEDED"
	CodeTimeout              = "TIMEOUT"
	CodeStoreFailure         = "STORE_FAILURE"
	CodeInternal             = "INTERNAL_ERROR"
)

// Postgres SQLSTATE values that mean "run the transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewInvalidArgument(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidArgument, message, http.StatusBadRequest, details)
}

func NewInvalidAmount(message string) error {
	return NewDomainError(CodeInvalidAmount, message, http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewAlreadyPaid(jobID int64) error {
	return NewDomainError(CodeAlreadyPaid, "job already paid", http.StatusConflict, map[string]any{"job_id": jobID})
}

func NewInsufficientFunds(details map[string]any) error {
	return NewDomainError(CodeInsufficientFunds, "not sufficient balance", http.StatusBadRequest, details)
}

func NewContractNotPayable(contractID int64, status string) error {
	return NewDomainError(CodeContractNotPayable, "contract is not in a payable state", http.StatusConflict,
		map[string]any{"contract_id": contractID, "status": status})
}

func NewDepositLimitExceeded(message string, details map[string]any) error {
	return NewDomainError(CodeDepositLimitExceeded, message, http.StatusBadRequest, details)
}

func NewTimeout(err error) error {
	return &DomainError{
		Code:       CodeTimeout,
		Message:    "transaction timed out",
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

func NewStoreFailure(err error) error {
	return &DomainError{
		Code:       CodeStoreFailure,
		Message:    "store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsRetryable reports whether err is a transaction conflict that can be
// resolved by running the whole unit of work again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

// FromStore classifies an error returned by the store. Domain errors pass
// through untouched.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return NewNotFound("resource", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeout(err)
	case IsRetryable(err):
		return NewConflict("concurrent update detected", nil)
	}
	return NewStoreFailure(err)
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already a DomainError or a missing row is reported as internal.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}
