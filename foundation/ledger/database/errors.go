package database

import (
	"errors"
	"fmt"
)

// Set of error variables for the failure modes of ledger operations. Every
// precondition violation is detected before any mutation is committed.
var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrAccountNotActive      = errors.New("account is not active")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyRegistered     = errors.New("account already registered")
	ErrInvalidRecipient      = errors.New("invalid recipient account")
	ErrInvalidStatus         = errors.New("invalid account status")
	ErrBatchLimit            = errors.New("batch size exceeds limit")
	ErrReentrantCall         = errors.New("reentrant ledger call")
	ErrUnauthorized          = errors.New("caller is not the ledger admin")
	ErrExternalReleaseFailed = errors.New("external value release failed")
)

// InsufficientBalanceError is returned when an account attempts to move
// more value than it holds.
type InsufficientBalanceError struct {
	Required  uint64
	Available uint64
}

// Error implements the error interface.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance, required %d, available %d", e.Required, e.Available)
}
