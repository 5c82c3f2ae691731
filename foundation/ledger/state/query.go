package state

import (
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
)

// QueryAccount returns a copy of the specified account from the database.
func (s *State) QueryAccount(accountID database.AccountID) (database.Account, error) {
	return s.db.Account(accountID)
}

// QueryAccounts returns a copy of the full set of accounts.
func (s *State) QueryAccounts() map[database.AccountID]database.Account {
	return s.db.CopyAccounts()
}

// QueryJournal returns the journal records, optionally restricted to the
// records that touch the specified account.
func (s *State) QueryJournal(accountID database.AccountID) ([]database.RecordData, error) {
	var out []database.RecordData

	iter := s.db.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if accountID != "" && !recordTouches(record, accountID) {
			continue
		}

		out = append(out, record)
	}

	return out, nil
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveTreasury returns the treasury account record.
func (s *State) RetrieveTreasury() (database.Account, error) {
	return s.db.Account(s.db.Treasury())
}

// RetrieveTotals returns the running value totals.
func (s *State) RetrieveTotals() database.Totals {
	return s.db.Totals()
}

// RetrieveLatestSeq returns the sequence number of the last committed record.
func (s *State) RetrieveLatestSeq() uint64 {
	return s.db.LatestSeq()
}

// =============================================================================

// ReconcileReport carries the result of a conservation audit over the
// current balances: Actual must equal Expected or value has been created
// or destroyed.
type ReconcileReport struct {
	Expected uint64          `json:"expected"`
	Actual   uint64          `json:"actual"`
	Totals   database.Totals `json:"totals"`
	Balanced bool            `json:"balanced"`
}

// Reconcile sums every balance on the ledger and compares the result
// against the running totals.
func (s *State) Reconcile() ReconcileReport {
	totals := s.db.Totals()

	var actual uint64
	for _, account := range s.db.CopyAccounts() {
		actual += account.Balance
	}

	expected := totals.Genesis + totals.Minted - totals.Released

	return ReconcileReport{
		Expected: expected,
		Actual:   actual,
		Totals:   totals,
		Balanced: actual == expected,
	}
}

// recordTouches reports whether the record involves the specified account.
func recordTouches(record database.RecordData, accountID database.AccountID) bool {
	if record.From == accountID || record.To == accountID {
		return true
	}

	for _, item := range record.Items {
		if item.To == accountID {
			return true
		}
	}

	return false
}
