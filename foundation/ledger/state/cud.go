package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Deposit credits the specified account with new value entering the ledger.
func (s *State) Deposit(accountID database.AccountID, amount uint64) error {
	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	events, err := s.db.Deposit(accountID, amount)
	if err != nil {
		return err
	}

	s.signalEvents(events)
	return nil
}

// Transfer moves value between two accounts with the fee portion routed
// to the treasury.
func (s *State) Transfer(fromID database.AccountID, toID database.AccountID, amount uint64) error {
	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	events, err := s.db.Transfer(fromID, toID, amount)
	if err != nil {
		return err
	}

	s.signalEvents(events)
	return nil
}

// TransferBatch moves value from one account to a set of recipients as a
// single all-or-nothing operation.
func (s *State) TransferBatch(fromID database.AccountID, items []database.BatchItem) error {
	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	events, err := s.db.TransferBatch(fromID, items)
	if err != nil {
		return err
	}

	s.signalEvents(events)
	return nil
}

// Withdraw debits the specified account and hands the value to the external
// releaser. The debit happens before the release and the guard stays held
// for the duration of the release call, so a callback into the ledger fails
// with ErrReentrantCall instead of double spending.
func (s *State) Withdraw(accountID database.AccountID, amount uint64) error {
	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	oldBalance, newBalance, err := s.db.WithdrawDebit(accountID, amount)
	if err != nil {
		return err
	}

	if err := s.releaser.Release(accountID, amount); err != nil {
		s.db.WithdrawRollback(accountID, amount)
		return fmt.Errorf("%w: %v", database.ErrExternalReleaseFailed, err)
	}

	// The value has left the ledger. A journal failure here keeps the
	// debit in place and surfaces the storage error.
	events, err := s.db.WithdrawCommit(accountID, amount, oldBalance, newBalance)
	if err != nil {
		s.evHandler("state: withdraw: journal write failed after release: account[%s] amount[%d]: %s", accountID, amount, err)
		return err
	}

	s.signalEvents(events)
	return nil
}

// RegisterAccount creates a new account with the opening balance. The name
// flows only to the AccountRegistered event.
func (s *State) RegisterAccount(accountID database.AccountID, name string, balance uint64) error {
	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	events, err := s.db.Register(accountID, name, balance)
	if err != nil {
		return err
	}

	s.signalEvents(events)
	return nil
}

// SetStatus transitions the status of an account. Only the genesis admin
// is authorized to perform the transition.
func (s *State) SetStatus(caller database.AccountID, accountID database.AccountID, status database.Status) error {
	if caller != s.admin {
		return database.ErrUnauthorized
	}

	release, err := s.acquireGuard()
	if err != nil {
		return err
	}
	defer release()

	events, err := s.db.SetStatus(accountID, status)
	if err != nil {
		return err
	}

	s.signalEvents(events)
	return nil
}
