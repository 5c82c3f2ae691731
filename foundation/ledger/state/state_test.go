package state_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/release"
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

func newState(t *testing.T, releaser state.Releaser) *state.State {
	gen := genesis.Genesis{
		LedgerID:       "test",
		Treasury:       treasury,
		Admin:          admin,
		FeeBasisPoints: 10,
		BaseReputation: 100,
		MaxBatchSize:   10,
		Balances:       map[string]uint64{accountA: 10_000},
	}

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		Releaser:  releaser,
		EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct state: %v", failed, err)
	}

	return st
}

// =============================================================================

func Test_WithdrawRelease(t *testing.T) {
	t.Log("Given the need to validate withdrawals hand value to the releaser.")
	{
		t.Logf("\tTest 0:\tWhen the external release succeeds.")
		{
			var released []uint64
			releaser := release.Func(func(accountID database.AccountID, amount uint64) error {
				released = append(released, amount)
				return nil
			})

			st := newState(t, releaser)

			if err := st.Withdraw(accountA, 4_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to withdraw: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to withdraw.", success)

			if len(released) != 1 || released[0] != 4_000 {
				t.Fatalf("\t%s\tTest 0:\tShould have released exactly the withdrawn amount: %v.", failed, released)
			}
			t.Logf("\t%s\tTest 0:\tShould have released exactly the withdrawn amount.", success)

			account, err := st.QueryAccount(accountA)
			if err != nil || account.Balance != 6_000 {
				t.Fatalf("\t%s\tTest 0:\tShould have the debited balance, got %d.", failed, account.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould have the debited balance.", success)

			if totals := st.RetrieveTotals(); totals.Released != 4_000 {
				t.Fatalf("\t%s\tTest 0:\tShould track the released total, got %d.", failed, totals.Released)
			}
			t.Logf("\t%s\tTest 0:\tShould track the released total.", success)
		}

		t.Logf("\tTest 1:\tWhen the external release fails.")
		{
			releaser := release.Func(func(accountID database.AccountID, amount uint64) error {
				return fmt.Errorf("bridge unavailable")
			})

			st := newState(t, releaser)

			err := st.Withdraw(accountA, 4_000)
			if !errors.Is(err, database.ErrExternalReleaseFailed) {
				t.Fatalf("\t%s\tTest 1:\tShould get a release failure, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a release failure.", success)

			account, _ := st.QueryAccount(accountA)
			if account.Balance != 10_000 {
				t.Fatalf("\t%s\tTest 1:\tShould have rolled the debit back, got %d.", failed, account.Balance)
			}
			t.Logf("\t%s\tTest 1:\tShould have rolled the debit back.", success)

			if totals := st.RetrieveTotals(); totals.Released != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould have unwound the released total, got %d.", failed, totals.Released)
			}
			t.Logf("\t%s\tTest 1:\tShould have unwound the released total.", success)

			if seq := st.RetrieveLatestSeq(); seq != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould not journal the failed withdrawal, got seq %d.", failed, seq)
			}
			t.Logf("\t%s\tTest 1:\tShould not journal the failed withdrawal.", success)
		}
	}
}

func Test_ReentrancyGuard(t *testing.T) {
	t.Log("Given the need to validate nested mutating calls fail fast.")
	{
		t.Logf("\tTest 0:\tWhen the releaser calls back into the ledger.")
		{
			var st *state.State
			var nestedErrs []error

			releaser := release.Func(func(accountID database.AccountID, amount uint64) error {
				nestedErrs = append(nestedErrs,
					st.Withdraw(accountID, 1),
					st.Transfer(accountA, accountB, 1),
					st.Deposit(accountA, 1),
				)
				return nil
			})

			st = newState(t, releaser)

			if err := st.Withdraw(accountA, 4_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould complete the outer withdrawal: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould complete the outer withdrawal.", success)

			for i, err := range nestedErrs {
				if !errors.Is(err, database.ErrReentrantCall) {
					t.Fatalf("\t%s\tTest 0:\tShould reject nested call %d with the reentrancy error, got %v.", failed, i, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reject every nested call with the reentrancy error.", success)

			account, _ := st.QueryAccount(accountA)
			if account.Balance != 6_000 {
				t.Fatalf("\t%s\tTest 0:\tShould apply exactly one debit, got %d.", failed, account.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould apply exactly one debit.", success)
		}

		t.Logf("\tTest 1:\tWhen an operation completes or fails.")
		{
			st := newState(t, release.Func(func(database.AccountID, uint64) error { return nil }))

			if err := st.Transfer(accountA, accountB, 0); !errors.Is(err, database.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the invalid transfer, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the invalid transfer.", success)

			// The guard must be free again after the failed call.
			if err := st.Deposit(accountA, 100); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould release the guard after a failure: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould release the guard after a failure.", success)

			if err := st.Deposit(accountA, 100); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould release the guard after a success: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould release the guard after a success.", success)
		}
	}
}

func Test_EventsAfterCommit(t *testing.T) {
	// captureWorker records the events the state signals post-commit.
	type captureWorker struct {
		events []database.Event
	}

	t.Log("Given the need to validate events fire only after a durable commit.")
	{
		t.Logf("\tTest 0:\tWhen running failed and successful operations.")
		{
			st := newState(t, release.Func(func(database.AccountID, uint64) error { return nil }))

			var w captureWorker
			st.Worker = workerFunc(func(event database.Event) {
				w.events = append(w.events, event)
			})

			if err := st.Transfer(accountA, accountB, 1_000_000); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject the over-balance transfer.", failed)
			}
			if len(w.events) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould signal no events for a failed operation, got %d.", failed, len(w.events))
			}
			t.Logf("\t%s\tTest 0:\tShould signal no events for a failed operation.", success)

			if err := st.Transfer(accountA, accountB, 1_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to transfer: %v.", failed, err)
			}

			kinds := make([]string, len(w.events))
			for i, event := range w.events {
				kinds[i] = event.Kind()
			}

			exp := []string{"balance_changed", "balance_changed", "balance_changed", "transfer_executed"}
			if len(kinds) != len(exp) {
				t.Fatalf("\t%s\tTest 0:\tShould signal the full event sequence, got %v.", failed, kinds)
			}
			for i := range exp {
				if kinds[i] != exp[i] {
					t.Fatalf("\t%s\tTest 0:\tShould signal events in commit order, got %v.", failed, kinds)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould signal the full event sequence in commit order.", success)
		}
	}
}

func Test_SetStatusAuthorization(t *testing.T) {
	t.Log("Given the need to validate only the admin can transition statuses.")
	{
		t.Logf("\tTest 0:\tWhen callers request a status change.")
		{
			st := newState(t, release.Func(func(database.AccountID, uint64) error { return nil }))

			err := st.SetStatus(accountA, accountA, database.StatusSuspended)
			if !errors.Is(err, database.ErrUnauthorized) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a non-admin caller, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a non-admin caller.", success)

			if err := st.SetStatus(admin, accountA, database.StatusSuspended); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the admin caller: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the admin caller.", success)

			account, _ := st.QueryAccount(accountA)
			if account.Status != database.StatusSuspended {
				t.Fatalf("\t%s\tTest 0:\tShould have the new status, got %s.", failed, account.Status)
			}
			t.Logf("\t%s\tTest 0:\tShould have the new status.", success)
		}
	}
}

func Test_Reconcile(t *testing.T) {
	t.Log("Given the need to validate the conservation audit.")
	{
		t.Logf("\tTest 0:\tWhen auditing after a mix of operations.")
		{
			st := newState(t, release.Func(func(database.AccountID, uint64) error { return nil }))

			if err := st.RegisterAccount(accountB, "pavel", 2_500); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould register: %v.", failed, err)
			}
			if err := st.Transfer(accountA, accountB, 3_333); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould transfer: %v.", failed, err)
			}
			if err := st.Withdraw(accountB, 1_111); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould withdraw: %v.", failed, err)
			}

			report := st.Reconcile()
			if !report.Balanced {
				t.Fatalf("\t%s\tTest 0:\tShould balance, got actual %d exp %d.", failed, report.Actual, report.Expected)
			}
			t.Logf("\t%s\tTest 0:\tShould balance after the operations.", success)
		}
	}
}

// =============================================================================

// workerFunc adapts a function to the state.Worker contract for testing.
type workerFunc func(event database.Event)

func (f workerFunc) SignalEvent(event database.Event) { f(event) }
func (f workerFunc) Shutdown()                        {}
