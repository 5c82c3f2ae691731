package v1

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// LedgerError converts a failure reported by the ledger core into a
// RequestError carrying the HTTP status the failure maps to.
func LedgerError(err error) error {
	return NewRequestError(err, ledgerStatus(err))
}

// ledgerStatus maps the ledger error taxonomy onto HTTP status codes.
func ledgerStatus(err error) int {
	var insufficient *database.InsufficientBalanceError

	switch {
	case errors.Is(err, database.ErrAccountNotFound):
		return http.StatusNotFound

	case errors.Is(err, database.ErrAlreadyRegistered),
		errors.Is(err, database.ErrReentrantCall):
		return http.StatusConflict

	case errors.Is(err, database.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, database.ErrExternalReleaseFailed):
		return http.StatusBadGateway

	case errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrInvalidRecipient),
		errors.Is(err, database.ErrAccountNotActive),
		errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrBatchLimit),
		errors.As(err, &insufficient):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
