package database

import (
	"math/bits"
	"time"
)

// Set of operations a journal record can represent.
const (
	OpDeposit       = "deposit"
	OpTransfer      = "transfer"
	OpTransferBatch = "transfer_batch"
	OpWithdraw      = "withdraw"
	OpRegister      = "register"
	OpSetStatus     = "set_status"
)

// RecordData represents one committed mutating operation in the journal.
// Replaying all records in sequence order over the genesis state rebuilds
// the exact account map.
type RecordData struct {
	Seq       uint64      `json:"seq"`
	TimeStamp uint64      `json:"timestamp"`
	Op        string      `json:"op"`
	From      AccountID   `json:"from,omitempty"`
	To        AccountID   `json:"to,omitempty"`
	Amount    uint64      `json:"amount,omitempty"`
	Fee       uint64      `json:"fee,omitempty"`
	Name      string      `json:"name,omitempty"`
	Status    Status      `json:"status,omitempty"`
	Items     []BatchItem `json:"items,omitempty"`
}

// BatchItem represents one transfer inside a batch record.
type BatchItem struct {
	To     AccountID `json:"to"`
	Amount uint64    `json:"amount"`
}

// newRecordData constructs a record stamped with the next sequence number.
func newRecordData(seq uint64, op string, now time.Time) RecordData {
	return RecordData{
		Seq:       seq,
		TimeStamp: uint64(now.UTC().UnixMilli()),
		Op:        op,
	}
}

// =============================================================================

// Fee computes floor(amount * basisPoints / 10000) without overflow by
// carrying the intermediate product in 128 bits. With basisPoints capped at
// 10000 the high word of the product is always smaller than the divisor, so
// the division can't trap.
func Fee(amount uint64, basisPoints uint16) uint64 {
	hi, lo := bits.Mul64(amount, uint64(basisPoints))
	fee, _ := bits.Div64(hi, lo, 10_000)
	return fee
}
