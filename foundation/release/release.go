// Package release provides the host side collaborator that moves withdrawn
// value out of the ledger. The ledger core only sees the state.Releaser
// contract and never depends on how the hand-off is performed.
package release

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Func is an adapter that allows a plain function to serve as a releaser.
type Func func(accountID database.AccountID, amount uint64) error

// Release implements the state.Releaser contract.
func (f Func) Release(accountID database.AccountID, amount uint64) error {
	return f(accountID, amount)
}

// =============================================================================

// payout represents one released value hand-off written to the record file.
type payout struct {
	AccountID database.AccountID `json:"account_id"`
	Amount    uint64             `json:"amount"`
	TimeStamp time.Time          `json:"timestamp"`
}

// Recorder releases value by appending a payout line to a file the host
// settles out of band. The append must reach the file before the release
// reports success.
type Recorder struct {
	mu   sync.Mutex
	file *os.File
}

// NewRecorder opens the payout record file for use.
func NewRecorder(path string) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_RDWR, 0600)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		file, err = os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
		if err != nil {
			return nil, err
		}
	}

	return &Recorder{file: file}, nil
}

// Close closes the payout record file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}

// Release implements the state.Releaser contract by durably recording
// the payout.
func (r *Recorder) Release(accountID database.AccountID, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(payout{AccountID: accountID, Amount: amount, TimeStamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	if _, err := r.file.Write(append(data, '\n')); err != nil {
		return err
	}

	return r.file.Sync()
}
