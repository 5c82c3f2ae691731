package database

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// Set of statuses an account can carry. Inactive is the zero value an
// account has before it is registered and is never re-entered once the
// account becomes Active.
const (
	StatusInactive  Status = "Inactive"
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusBanned    Status = "Banned"
)

// Status represents the lifecycle state of an account.
type Status string

// ToStatus converts a string to a Status and validates it names one of the
// statuses an admin is allowed to assign.
func ToStatus(status string) (Status, error) {
	s := Status(status)

	switch s {
	case StatusActive, StatusSuspended, StatusBanned:
		return s, nil
	}

	return "", ErrInvalidStatus
}

// =============================================================================

// Account represents information stored in the database for an
// individual account.
type Account struct {
	AccountID  AccountID
	Balance    uint64
	Reputation uint64
	Status     Status
}

// newAccount constructs a new account value for use.
func newAccount(accountID AccountID, balance uint64, reputation uint64) Account {
	return Account{
		AccountID:  accountID,
		Balance:    balance,
		Reputation: reputation,
		Status:     StatusActive,
	}
}

// =============================================================================

// AccountID represents an account id that identifies parties moving value
// on the ledger. The id is externally issued, the ledger never mints one.
type AccountID string

// ToAccountID converts a hex-encoded string to an account id and validates
// the hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account id value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
