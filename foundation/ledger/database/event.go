package database

// Event represents a notification about a committed ledger mutation. Events
// are computed while the mutation is applied but must only be forwarded to
// observers after the journal write has succeeded. A failed operation never
// produces an event.
type Event interface {
	Kind() string
}

// AccountRegistered reports a new account was created on the ledger.
type AccountRegistered struct {
	AccountID AccountID `json:"account_id"`
	Name      string    `json:"name"`
}

// Kind returns the event kind identifier.
func (AccountRegistered) Kind() string { return "account_registered" }

// BalanceChanged reports an account balance moved from one value to another.
type BalanceChanged struct {
	AccountID  AccountID `json:"account_id"`
	OldBalance uint64    `json:"old_balance"`
	NewBalance uint64    `json:"new_balance"`
}

// Kind returns the event kind identifier.
func (BalanceChanged) Kind() string { return "balance_changed" }

// TransferExecuted reports a completed fee-bearing transfer.
type TransferExecuted struct {
	From      AccountID `json:"from"`
	To        AccountID `json:"to"`
	NetAmount uint64    `json:"net_amount"`
	Fee       uint64    `json:"fee"`
}

// Kind returns the event kind identifier.
func (TransferExecuted) Kind() string { return "transfer_executed" }

// StatusChanged reports an administrative account status transition.
type StatusChanged struct {
	AccountID AccountID `json:"account_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// Kind returns the event kind identifier.
func (StatusChanged) Kind() string { return "status_changed" }
