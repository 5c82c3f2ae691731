package public

import "github.com/ardanlabs/ledger/foundation/ledger/database"

// depositTx is what is expected for a deposit operation.
type depositTx struct {
	AccountID string `json:"account_id" validate:"required"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

// transferTx is what is expected for a transfer operation.
type transferTx struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

// batchItem is one recipient of a batch transfer.
type batchItem struct {
	To     string `json:"to" validate:"required"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

// transferBatchTx is what is expected for a batch transfer operation.
type transferBatchTx struct {
	From  string      `json:"from" validate:"required"`
	Items []batchItem `json:"items" validate:"required,min=1,dive"`
}

// withdrawTx is what is expected for a withdraw operation.
type withdrawTx struct {
	AccountID string `json:"account_id" validate:"required"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

// =============================================================================

// info represents one account in the accounts listing.
type info struct {
	AccountID  database.AccountID `json:"account_id"`
	Name       string             `json:"name"`
	Balance    uint64             `json:"balance"`
	Reputation uint64             `json:"reputation"`
	Status     database.Status    `json:"status"`
}

// actInfo is the accounts listing response.
type actInfo struct {
	LatestSeq uint64 `json:"latest_seq"`
	Accounts  []info `json:"accounts"`
}

// txResult is the uniform response for accepted mutating operations.
type txResult struct {
	Status    string `json:"status"`
	LatestSeq uint64 `json:"latest_seq"`
}
