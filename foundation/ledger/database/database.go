// Package database handles the lower level support for maintaining the
// ledger journal in storage and maintaining an in memory database of
// account balances and reputation state.
package database

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the journal.
type Serializer interface {
	Write(record RecordData) error
	GetRecord(seq uint64) (RecordData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented
// by any package providing support to iterate over the journal records.
type Iterator interface {
	Next() (RecordData, error)
	Done() bool
}

// =============================================================================

// Totals tracks the running value totals needed to audit conservation:
// the sum of all balances must always equal Genesis + Minted - Released.
type Totals struct {
	Genesis  uint64 // Value seeded by the genesis balances.
	Minted   uint64 // Value entering via deposits and registrations.
	Released uint64 // Value leaving via withdrawals.
}

// =============================================================================

// Database manages data related to accounts who have transacted on the ledger.
type Database struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	treasury  AccountID
	accounts  map[AccountID]Account
	latestSeq uint64
	totals    Totals

	serializer Serializer
	evHandler  func(v string, args ...any)
}

// New constructs a new database, applies the genesis balance information
// and replays the journal records found in storage.
func New(genesis genesis.Genesis, serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	treasury, err := ToAccountID(genesis.Treasury)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury account: %w", err)
	}

	db := Database{
		genesis:    genesis,
		treasury:   treasury,
		accounts:   make(map[AccountID]Account),
		serializer: serializer,
		evHandler:  ev,
	}

	if err := db.seedGenesis(); err != nil {
		return nil, err
	}

	// Replay the journal from storage to rebuild the balances and totals
	// the ledger held when it was last shut down.
	iter := db.serializer.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if record.Seq != db.latestSeq+1 {
			return nil, fmt.Errorf("journal gap, got seq %d, exp %d", record.Seq, db.latestSeq+1)
		}

		if err := db.applyRecord(record); err != nil {
			return nil, fmt.Errorf("replaying record %d: %w", record.Seq, err)
		}

		db.latestSeq = record.Seq
	}

	ev("database: replay complete: records[%d] accounts[%d]", db.latestSeq, len(db.accounts))

	return &db, nil
}

// seedGenesis loads the accounts named in the genesis file. Seeded accounts
// start Active with the base reputation so founders can transact immediately.
func (db *Database) seedGenesis() error {
	db.accounts = make(map[AccountID]Account)
	db.totals = Totals{}
	db.latestSeq = 0

	seed := func(accountStr string, balance uint64) error {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return err
		}

		if account, exists := db.accounts[accountID]; exists {
			account.Balance += balance
			db.accounts[accountID] = account
		} else {
			db.accounts[accountID] = newAccount(accountID, balance, db.genesis.BaseReputation)
		}

		db.totals.Genesis += balance
		return nil
	}

	if err := seed(db.genesis.Treasury, 0); err != nil {
		return fmt.Errorf("invalid treasury account: %w", err)
	}

	if err := seed(db.genesis.Admin, 0); err != nil {
		return fmt.Errorf("invalid admin account: %w", err)
	}

	for accountStr, balance := range db.genesis.Balances {
		if err := seed(accountStr, balance); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the open journal storage.
func (db *Database) Close() {
	db.serializer.Close()
}

// Reset re-initalizes the database back to the genesis state.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Reset(); err != nil {
		return err
	}

	return db.seedGenesis()
}

// =============================================================================
// Mutating operations. Each operation validates every precondition before
// touching any balance, writes the journal record, and only then applies the
// in-memory mutation. The returned events reflect the mutations in the order
// they completed and must be forwarded only after this call returns nil.

// Deposit credits the specified account with new value entering the ledger.
func (db *Database) Deposit(accountID AccountID, amount uint64) ([]Event, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists || account.Status != StatusActive {
		return nil, ErrAccountNotActive
	}

	if account.Balance > math.MaxUint64-amount {
		return nil, ErrInvalidAmount
	}

	record := newRecordData(db.latestSeq+1, OpDeposit, time.Now())
	record.To = accountID
	record.Amount = amount

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	oldBalance := account.Balance
	account.Balance += amount
	db.accounts[accountID] = account
	db.totals.Minted += amount
	db.latestSeq = record.Seq

	events := []Event{
		BalanceChanged{AccountID: accountID, OldBalance: oldBalance, NewBalance: account.Balance},
	}

	return events, nil
}

// Transfer moves value between two accounts, routing the fee portion to
// the treasury. All three balance mutations commit as a single atomic step.
func (db *Database) Transfer(fromID AccountID, toID AccountID, amount uint64) ([]Event, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.validateRecipient(fromID, toID); err != nil {
		return nil, err
	}

	from, exists := db.accounts[fromID]
	if !exists || from.Status != StatusActive {
		return nil, ErrAccountNotActive
	}

	if from.Balance < amount {
		return nil, &InsufficientBalanceError{Required: amount, Available: from.Balance}
	}

	fee := Fee(amount, db.genesis.FeeBasisPoints)
	net := amount - fee

	to := db.accounts[toID]
	if to.Balance > math.MaxUint64-net {
		return nil, ErrInvalidAmount
	}

	record := newRecordData(db.latestSeq+1, OpTransfer, time.Now())
	record.From = fromID
	record.To = toID
	record.Amount = amount
	record.Fee = fee

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	events := db.applyTransfer(fromID, toID, amount, fee)
	db.latestSeq = record.Seq

	return events, nil
}

// TransferBatch moves value from one account to a set of recipients as a
// single all-or-nothing operation. Every item is validated, including the
// cumulative amount against the initiator's balance, before any mutation.
func (db *Database) TransferBatch(fromID AccountID, items []BatchItem) ([]Event, error) {
	if len(items) == 0 {
		return nil, ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if len(items) > db.genesis.MaxBatchSize {
		return nil, ErrBatchLimit
	}

	from, exists := db.accounts[fromID]
	if !exists || from.Status != StatusActive {
		return nil, ErrAccountNotActive
	}

	var total uint64
	var totalFee uint64
	for _, item := range items {
		if item.Amount == 0 {
			return nil, ErrInvalidAmount
		}
		if err := db.validateRecipient(fromID, item.To); err != nil {
			return nil, err
		}
		if total > math.MaxUint64-item.Amount {
			return nil, ErrInvalidAmount
		}
		total += item.Amount
		totalFee += Fee(item.Amount, db.genesis.FeeBasisPoints)
	}

	if from.Balance < total {
		return nil, &InsufficientBalanceError{Required: total, Available: from.Balance}
	}

	record := newRecordData(db.latestSeq+1, OpTransferBatch, time.Now())
	record.From = fromID
	record.Amount = total
	record.Fee = totalFee
	record.Items = items

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	var events []Event
	for _, item := range items {
		fee := Fee(item.Amount, db.genesis.FeeBasisPoints)
		events = append(events, db.applyTransfer(fromID, item.To, item.Amount, fee)...)
	}
	db.latestSeq = record.Seq

	return events, nil
}

// Register creates a new account with the opening balance, the base
// reputation, and Active status. The name flows only to the event, the
// ledger stores no names.
func (db *Database) Register(accountID AccountID, name string, balance uint64) ([]Event, error) {
	if !accountID.IsAccountID() {
		return nil, ErrInvalidRecipient
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.accounts[accountID]; exists {
		return nil, ErrAlreadyRegistered
	}

	record := newRecordData(db.latestSeq+1, OpRegister, time.Now())
	record.To = accountID
	record.Amount = balance
	record.Name = name

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	db.accounts[accountID] = newAccount(accountID, balance, db.genesis.BaseReputation)
	db.totals.Minted += balance
	db.latestSeq = record.Seq

	events := []Event{
		AccountRegistered{AccountID: accountID, Name: name},
	}
	if balance > 0 {
		events = append(events, BalanceChanged{AccountID: accountID, OldBalance: 0, NewBalance: balance})
	}

	return events, nil
}

// SetStatus transitions the status of an account. Authorization of the
// caller is the responsibility of the layer above. A never-referenced
// identifier materializes a zero record carrying the new status.
func (db *Database) SetStatus(accountID AccountID, status Status) ([]Event, error) {
	if _, err := ToStatus(string(status)); err != nil {
		return nil, err
	}

	if !accountID.IsAccountID() {
		return nil, ErrInvalidRecipient
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.accounts[accountID]
	oldStatus := account.Status
	if oldStatus == "" {
		oldStatus = StatusInactive
	}

	record := newRecordData(db.latestSeq+1, OpSetStatus, time.Now())
	record.To = accountID
	record.Status = status

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	account.AccountID = accountID
	account.Status = status
	db.accounts[accountID] = account
	db.latestSeq = record.Seq

	events := []Event{
		StatusChanged{AccountID: accountID, OldStatus: oldStatus, NewStatus: status},
	}

	return events, nil
}

// =============================================================================
// Withdrawals follow checks-effects-interactions ordering: the debit is
// applied first, the external release happens outside any data lock, and
// the journal record commits only once the release reported success.

// WithdrawDebit validates the withdrawal and applies the debit. The caller
// must follow up with WithdrawCommit on a successful external release or
// WithdrawRollback when the release fails.
func (db *Database) WithdrawDebit(accountID AccountID, amount uint64) (oldBalance uint64, newBalance uint64, err error) {
	if amount == 0 {
		return 0, 0, ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists || account.Status != StatusActive {
		return 0, 0, ErrAccountNotActive
	}

	if account.Balance < amount {
		return 0, 0, &InsufficientBalanceError{Required: amount, Available: account.Balance}
	}

	oldBalance = account.Balance
	account.Balance -= amount
	db.accounts[accountID] = account
	db.totals.Released += amount

	return oldBalance, account.Balance, nil
}

// WithdrawRollback undoes the debit performed by WithdrawDebit after the
// external release failed. The whole withdrawal is all-or-nothing.
func (db *Database) WithdrawRollback(accountID AccountID, amount uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.accounts[accountID]
	account.Balance += amount
	db.accounts[accountID] = account
	db.totals.Released -= amount
}

// WithdrawCommit journals the completed withdrawal. A write failure here
// keeps the debit in place since the value has already left the ledger.
func (db *Database) WithdrawCommit(accountID AccountID, amount uint64, oldBalance uint64, newBalance uint64) ([]Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	record := newRecordData(db.latestSeq+1, OpWithdraw, time.Now())
	record.From = accountID
	record.Amount = amount

	if err := db.serializer.Write(record); err != nil {
		return nil, err
	}

	db.latestSeq = record.Seq

	events := []Event{
		BalanceChanged{AccountID: accountID, OldBalance: oldBalance, NewBalance: newBalance},
	}

	return events, nil
}

// =============================================================================

// validateRecipient applies the recipient policy shared by single and batch
// transfers. Direct transfers to the treasury are disallowed, fees are the
// only route for value to reach it.
func (db *Database) validateRecipient(fromID AccountID, toID AccountID) error {
	if !toID.IsAccountID() {
		return ErrInvalidRecipient
	}
	if toID == fromID {
		return ErrInvalidRecipient
	}
	if toID == db.treasury {
		return ErrInvalidRecipient
	}
	return nil
}

// applyTransfer mutates the three accounts involved in a transfer. The
// caller holds the lock and has validated every precondition. A recipient
// never referenced before is created implicitly with Inactive status.
func (db *Database) applyTransfer(fromID AccountID, toID AccountID, amount uint64, fee uint64) []Event {
	net := amount - fee

	from := db.accounts[fromID]
	oldFrom := from.Balance
	from.Balance -= amount
	from.Reputation++
	db.accounts[fromID] = from

	to := db.accounts[toID]
	to.AccountID = toID
	if to.Status == "" {
		to.Status = StatusInactive
	}
	oldTo := to.Balance
	to.Balance += net
	db.accounts[toID] = to

	events := []Event{
		BalanceChanged{AccountID: fromID, OldBalance: oldFrom, NewBalance: from.Balance},
		BalanceChanged{AccountID: toID, OldBalance: oldTo, NewBalance: to.Balance},
	}

	if fee > 0 {
		treasury := db.accounts[db.treasury]
		oldTreasury := treasury.Balance
		treasury.Balance += fee
		db.accounts[db.treasury] = treasury

		events = append(events, BalanceChanged{AccountID: db.treasury, OldBalance: oldTreasury, NewBalance: treasury.Balance})
	}

	events = append(events, TransferExecuted{From: fromID, To: toID, NetAmount: net, Fee: fee})

	return events
}

// applyRecord replays one journal record over the in-memory state. Records
// were fully validated when they were written so replay applies them without
// re-running the business checks.
func (db *Database) applyRecord(record RecordData) error {
	switch record.Op {
	case OpDeposit:
		account := db.accounts[record.To]
		account.Balance += record.Amount
		db.accounts[record.To] = account
		db.totals.Minted += record.Amount

	case OpTransfer:
		db.applyTransfer(record.From, record.To, record.Amount, record.Fee)

	case OpTransferBatch:
		for _, item := range record.Items {
			fee := Fee(item.Amount, db.genesis.FeeBasisPoints)
			db.applyTransfer(record.From, item.To, item.Amount, fee)
		}

	case OpWithdraw:
		account := db.accounts[record.From]
		account.Balance -= record.Amount
		db.accounts[record.From] = account
		db.totals.Released += record.Amount

	case OpRegister:
		db.accounts[record.To] = newAccount(record.To, record.Amount, db.genesis.BaseReputation)
		db.totals.Minted += record.Amount

	case OpSetStatus:
		account := db.accounts[record.To]
		account.AccountID = record.To
		account.Status = record.Status
		db.accounts[record.To] = account

	default:
		return fmt.Errorf("unknown journal op %q", record.Op)
	}

	return nil
}

// =============================================================================
// Queries. Read paths take no reentrancy guard and mutate nothing.

// Account returns a copy of the specified account record.
func (db *Database) Account(accountID AccountID) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return Account{}, ErrAccountNotFound
	}

	return account, nil
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = account
	}

	return accounts
}

// Treasury returns the treasury account identifier.
func (db *Database) Treasury() AccountID {
	return db.treasury
}

// Totals returns a copy of the running value totals.
func (db *Database) Totals() Totals {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.totals
}

// LatestSeq returns the sequence number of the last committed record.
func (db *Database) LatestSeq() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestSeq
}

// GetRecord reads the journal to locate and return the record with the
// specified sequence number.
func (db *Database) GetRecord(seq uint64) (RecordData, error) {
	return db.serializer.GetRecord(seq)
}

// ForEach returns an iterator to walk through all the journal records
// starting with record 1.
func (db *Database) ForEach() Iterator {
	return db.serializer.ForEach()
}
