package worker_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/ledger/worker"
	"github.com/ardanlabs/ledger/foundation/release"
	"go.uber.org/goleak"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// Accounts used across the tests.
const (
	treasury = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	admin    = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	accountA = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	accountB = "0xa988b1866EaBF72B4c53b592c97aAD8e4b026148"
)

func Test_RelayAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := genesis.Genesis{
		LedgerID:       "test",
		Treasury:       treasury,
		Admin:          admin,
		FeeBasisPoints: 10,
		BaseReputation: 100,
		MaxBatchSize:   10,
		Balances:       map[string]uint64{accountA: 10_000},
	}

	t.Log("Given the need to validate committed events reach subscribers.")
	{
		t.Logf("\tTest 0:\tWhen relaying a transfer through the worker.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open storage: %v.", failed, err)
			}

			st, err := state.New(state.Config{
				Genesis:   gen,
				Storage:   strg,
				Releaser:  release.Func(func(database.AccountID, uint64) error { return nil }),
				EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
			})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct state: %v.", failed, err)
			}
			defer st.Shutdown()

			evts := events.New()
			defer evts.Shutdown()

			worker.Run(st, worker.Config{Evts: evts}, func(v string, args ...any) { t.Logf(v, args...) })
			t.Logf("\t%s\tTest 0:\tShould be able to start the worker.", success)

			ch := evts.Acquire("test-subscriber")

			if err := st.Transfer(accountA, accountB, 1_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to transfer: %v.", failed, err)
			}

			// The transfer commits three balance changes and the transfer
			// event itself.
			exp := []string{"balance_changed", "balance_changed", "balance_changed", "transfer_executed"}

			for i, kind := range exp {
				select {
				case msg := <-ch:
					var env struct {
						Type string `json:"type"`
					}
					if err := json.Unmarshal([]byte(msg), &env); err != nil {
						t.Fatalf("\t%s\tTest 0:\tShould receive a well formed envelope: %v.", failed, err)
					}
					if env.Type != kind {
						t.Fatalf("\t%s\tTest 0:\tShould receive event %d as %s, got %s.", failed, i, kind, env.Type)
					}

				case <-time.After(5 * time.Second):
					t.Fatalf("\t%s\tTest 0:\tShould receive event %d before the timeout.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould receive the full event sequence in commit order.", success)

			if err := evts.Release("test-subscriber"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to release the subscription: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to release the subscription.", success)
		}
	}
}
