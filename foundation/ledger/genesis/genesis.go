// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time         `json:"date"`
	LedgerID       string            `json:"ledger_id"`        // Unique id for this running ledger instance.
	Treasury       string            `json:"treasury"`         // Account that accumulates fee revenue.
	Admin          string            `json:"admin"`            // Account allowed to perform administrative operations.
	FeeBasisPoints uint16            `json:"fee_basis_points"` // Fee rate charged on transfers, in 1/10000 units.
	BaseReputation uint64            `json:"base_reputation"`  // Reputation assigned to newly registered accounts.
	MaxBatchSize   int               `json:"max_batch_size"`   // The maximum number of transfers allowed in one batch.
	Balances       map[string]uint64 `json:"balances"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate performs the basic consistency checks on the genesis values
// the ledger depends on for its lifetime.
func (g Genesis) Validate() error {
	if g.Treasury == "" {
		return errors.New("genesis is missing a treasury account")
	}

	if g.Admin == "" {
		return errors.New("genesis is missing an admin account")
	}

	if g.FeeBasisPoints > 10_000 {
		return fmt.Errorf("fee basis points can't exceed 10000, got %d", g.FeeBasisPoints)
	}

	if g.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be greater than zero, got %d", g.MaxBatchSize)
	}

	return nil
}
