package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden access")
	ErrNotApproved        = errors.New("account not approved")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidStatus      = errors.New("invalid account status")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
)

// NotApprovedError is returned when credentials are correct but the account
// has not been approved. Identity is already proven at that point, so it may
// carry the account's id/email/status back to the caller.
type NotApprovedError struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

func (e *NotApprovedError) Error() string {
	return "account not approved"
}

func (e *NotApprovedError) Unwrap() error {
	return ErrNotApproved
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotApproved) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrEmailTaken) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}

	// Unique constraint violations that slipped past the pre-check.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}
