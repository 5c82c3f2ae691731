package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Accounts used across the tests.
const (
	treasury = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	admin    = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	accountA = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	accountB = "0xa988b1866EaBF72B4c53b592c97aAD8e4b026148"
	accountC = "0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD8"
)

func newGenesis(feeBasisPoints uint16, balances map[string]uint64) genesis.Genesis {
	return genesis.Genesis{
		LedgerID:       "test",
		Treasury:       treasury,
		Admin:          admin,
		FeeBasisPoints: feeBasisPoints,
		BaseReputation: 100,
		MaxBatchSize:   3,
		Balances:       balances,
	}
}

func newDatabase(t *testing.T, gen genesis.Genesis) *database.Database {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
	}

	db, err := database.New(gen, strg, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open database: %v", failed, err)
	}

	return db
}

// =============================================================================

func Test_Transfers(t *testing.T) {
	type table struct {
		name           string
		feeBasisPoints uint16
		balances       map[string]uint64
		from           database.AccountID
		to             database.AccountID
		amount         uint64
		final          map[database.AccountID]uint64
	}

	tt := []table{
		{
			name:           "scenario",
			feeBasisPoints: 10,
			balances:       map[string]uint64{accountA: 10_000},
			from:           accountA,
			to:             accountB,
			amount:         1_000,
			final: map[database.AccountID]uint64{
				accountA: 9_000,
				accountB: 999,
				treasury: 1,
			},
		},
		{
			name:           "fee rounds to zero",
			feeBasisPoints: 10,
			balances:       map[string]uint64{accountA: 10_000},
			from:           accountA,
			to:             accountB,
			amount:         999,
			final: map[database.AccountID]uint64{
				accountA: 9_001,
				accountB: 999,
				treasury: 0,
			},
		},
		{
			name:           "fee at scale",
			feeBasisPoints: 10,
			balances:       map[string]uint64{accountA: 2_000_000},
			from:           accountA,
			to:             accountB,
			amount:         1_000_000,
			final: map[database.AccountID]uint64{
				accountA: 1_000_000,
				accountB: 999_000,
				treasury: 1_000,
			},
		},
	}

	t.Log("Given the need to validate fee-bearing transfers.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transfer.", testID, tst.name)
			{
				f := func(t *testing.T) {
					db := newDatabase(t, newGenesis(tst.feeBasisPoints, tst.balances))
					t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

					events, err := db.Transfer(tst.from, tst.to, tst.amount)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to apply transfer: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to apply transfer.", success, testID)

					if len(events) == 0 {
						t.Fatalf("\t%s\tTest %d:\tShould receive events for the transfer.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould receive events for the transfer.", success, testID)

					accounts := db.CopyAccounts()
					for accountID, finalValue := range tst.final {
						if accounts[accountID].Balance != finalValue {
							t.Errorf("\t%s\tTest %d:\tShould have correct balance for %s.", failed, testID, accountID)
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, accounts[accountID].Balance)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, finalValue)
						} else {
							t.Logf("\t%s\tTest %d:\tShould have correct balance for %s.", success, testID, accountID)
						}
					}

					if accounts[tst.from].Reputation != 101 {
						t.Errorf("\t%s\tTest %d:\tShould have incremented the sender reputation, got %d.", failed, testID, accounts[tst.from].Reputation)
					} else {
						t.Logf("\t%s\tTest %d:\tShould have incremented the sender reputation.", success, testID)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_TransferRejections(t *testing.T) {
	type table struct {
		name   string
		from   database.AccountID
		to     database.AccountID
		amount uint64
		err    error
	}

	tt := []table{
		{name: "zero amount", from: accountA, to: accountB, amount: 0, err: database.ErrInvalidAmount},
		{name: "self transfer", from: accountA, to: accountA, amount: 10, err: database.ErrInvalidRecipient},
		{name: "treasury recipient", from: accountA, to: treasury, amount: 10, err: database.ErrInvalidRecipient},
		{name: "malformed recipient", from: accountA, to: "0xBAD", amount: 10, err: database.ErrInvalidRecipient},
		{name: "inactive sender", from: accountC, to: accountB, amount: 10, err: database.ErrAccountNotActive},
	}

	t.Log("Given the need to validate transfer preconditions reject before mutation.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transfer.", testID, tst.name)
			{
				f := func(t *testing.T) {
					db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 1_000}))

					before := db.CopyAccounts()

					if _, err := db.Transfer(tst.from, tst.to, tst.amount); !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould get the expected rejection, got %v.", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected rejection.", success, testID)

					after := db.CopyAccounts()
					for accountID, account := range before {
						if after[accountID].Balance != account.Balance {
							t.Errorf("\t%s\tTest %d:\tShould leave balance for %s untouched.", failed, testID, accountID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould leave every balance untouched.", success, testID)

					if db.LatestSeq() != 0 {
						t.Errorf("\t%s\tTest %d:\tShould not journal a failed transfer.", failed, testID)
					} else {
						t.Logf("\t%s\tTest %d:\tShould not journal a failed transfer.", success, testID)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_InsufficientBalance(t *testing.T) {
	t.Log("Given the need to validate insufficient balance reporting.")
	{
		t.Logf("\tTest 0:\tWhen transferring more than the account holds.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 500}))

			_, err := db.Transfer(accountA, accountB, 1_000)

			var ib *database.InsufficientBalanceError
			if !errors.As(err, &ib) {
				t.Fatalf("\t%s\tTest 0:\tShould get an insufficient balance error, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get an insufficient balance error.", success)

			if ib.Required != 1_000 || ib.Available != 500 {
				t.Fatalf("\t%s\tTest 0:\tShould report required 1000 available 500, got %d/%d.", failed, ib.Required, ib.Available)
			}
			t.Logf("\t%s\tTest 0:\tShould report the required and available amounts.", success)

			accounts := db.CopyAccounts()
			if accounts[accountA].Balance != 500 || accounts[accountB].Balance != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave balances exactly as before the call.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave balances exactly as before the call.", success)
		}
	}
}

func Test_DepositAndRegister(t *testing.T) {
	t.Log("Given the need to validate deposits and registration.")
	{
		t.Logf("\tTest 0:\tWhen depositing into accounts.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 100}))

			if _, err := db.Deposit(accountA, 0); !errors.Is(err, database.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a zero deposit, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a zero deposit.", success)

			if _, err := db.Deposit(accountB, 50); !errors.Is(err, database.ErrAccountNotActive) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a deposit into an unknown account, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a deposit into an unknown account.", success)

			if _, err := db.Deposit(accountA, 50); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept a deposit into an active account: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept a deposit into an active account.", success)

			account, err := db.Account(accountA)
			if err != nil || account.Balance != 150 {
				t.Fatalf("\t%s\tTest 0:\tShould have balance 150, got %d.", failed, account.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould have the credited balance.", success)
		}

		t.Logf("\tTest 1:\tWhen registering accounts.")
		{
			db := newDatabase(t, newGenesis(10, nil))

			events, err := db.Register(accountB, "kennedy", 10_000)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to register an account: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to register an account.", success)

			if len(events) != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould emit registration and balance events, got %d.", failed, len(events))
			}
			t.Logf("\t%s\tTest 1:\tShould emit registration and balance events.", success)

			account, err := db.Account(accountB)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould find the registered account: %v.", failed, err)
			}
			if account.Status != database.StatusActive || account.Balance != 10_000 || account.Reputation != 100 {
				t.Fatalf("\t%s\tTest 1:\tShould have active status, balance and base reputation: %+v.", failed, account)
			}
			t.Logf("\t%s\tTest 1:\tShould have active status, balance and base reputation.", success)

			if _, err := db.Register(accountB, "imposter", 999); !errors.Is(err, database.ErrAlreadyRegistered) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a duplicate registration, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a duplicate registration.", success)

			account, _ = db.Account(accountB)
			if account.Balance != 10_000 || account.Reputation != 100 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the original record untouched: %+v.", failed, account)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the original record untouched.", success)
		}
	}
}

func Test_TransferBatch(t *testing.T) {
	t.Log("Given the need to validate all-or-nothing batch transfers.")
	{
		t.Logf("\tTest 0:\tWhen committing a valid batch.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 100_000}))

			items := []database.BatchItem{
				{To: accountB, Amount: 10_000},
				{To: accountC, Amount: 20_000},
			}

			if _, err := db.TransferBatch(accountA, items); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to commit the batch: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to commit the batch.", success)

			accounts := db.CopyAccounts()
			if accounts[accountA].Balance != 70_000 {
				t.Errorf("\t%s\tTest 0:\tShould have debited the full batch, got %d.", failed, accounts[accountA].Balance)
			}
			if accounts[accountB].Balance != 9_990 || accounts[accountC].Balance != 19_980 {
				t.Errorf("\t%s\tTest 0:\tShould have credited each recipient net of fee.", failed)
			}
			if accounts[treasury].Balance != 30 {
				t.Errorf("\t%s\tTest 0:\tShould have routed every fee to the treasury, got %d.", failed, accounts[treasury].Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould have the expected balances.", success)

			if accounts[accountA].Reputation != 102 {
				t.Errorf("\t%s\tTest 0:\tShould increment reputation per item, got %d.", failed, accounts[accountA].Reputation)
			} else {
				t.Logf("\t%s\tTest 0:\tShould increment reputation per item.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen a batch fails a precondition mid-validation.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 15_000}))

			items := []database.BatchItem{
				{To: accountB, Amount: 10_000},
				{To: accountA, Amount: 1_000}, // self transfer rejected
			}

			if _, err := db.TransferBatch(accountA, items); !errors.Is(err, database.ErrInvalidRecipient) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the whole batch, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the whole batch.", success)

			accounts := db.CopyAccounts()
			if accounts[accountA].Balance != 15_000 || accounts[accountB].Balance != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould leave every balance untouched.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave every balance untouched.", success)
		}

		t.Logf("\tTest 2:\tWhen a batch exceeds the configured limit.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 100_000}))

			items := []database.BatchItem{
				{To: accountB, Amount: 1},
				{To: accountB, Amount: 1},
				{To: accountB, Amount: 1},
				{To: accountB, Amount: 1},
			}

			if _, err := db.TransferBatch(accountA, items); !errors.Is(err, database.ErrBatchLimit) {
				t.Fatalf("\t%s\tTest 2:\tShould reject an oversize batch, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject an oversize batch.", success)
		}

		t.Logf("\tTest 3:\tWhen a batch total exceeds the balance.")
		{
			db := newDatabase(t, newGenesis(0, map[string]uint64{accountA: 15_000}))

			items := []database.BatchItem{
				{To: accountB, Amount: 10_000},
				{To: accountC, Amount: 10_000},
			}

			var ib *database.InsufficientBalanceError
			if _, err := db.TransferBatch(accountA, items); !errors.As(err, &ib) {
				t.Fatalf("\t%s\tTest 3:\tShould reject on the cumulative amount, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject on the cumulative amount.", success)
		}
	}
}

func Test_SetStatus(t *testing.T) {
	t.Log("Given the need to validate status transitions.")
	{
		t.Logf("\tTest 0:\tWhen transitioning account statuses.")
		{
			db := newDatabase(t, newGenesis(10, map[string]uint64{accountA: 1_000}))

			if _, err := db.SetStatus(accountA, database.StatusSuspended); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to suspend an account: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to suspend an account.", success)

			if _, err := db.Transfer(accountA, accountB, 10); !errors.Is(err, database.ErrAccountNotActive) {
				t.Fatalf("\t%s\tTest 0:\tShould reject transfers from a suspended account, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject transfers from a suspended account.", success)

			if _, err := db.SetStatus(accountA, database.StatusActive); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reinstate an account: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to reinstate an account.", success)

			if _, err := db.SetStatus(accountA, database.StatusInactive); !errors.Is(err, database.ErrInvalidStatus) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a transition back to Inactive, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a transition back to Inactive.", success)
		}
	}
}

func Test_Conservation(t *testing.T) {
	t.Log("Given the need to validate value is neither created nor destroyed.")
	{
		t.Logf("\tTest 0:\tWhen running a sequence of operations.")
		{
			db := newDatabase(t, newGenesis(25, map[string]uint64{accountA: 1_000_000}))

			if _, err := db.Register(accountB, "pavel", 0); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould register account B: %v.", failed, err)
			}
			if _, err := db.Deposit(accountB, 50_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould deposit into account B: %v.", failed, err)
			}
			for i := 0; i < 10; i++ {
				if _, err := db.Transfer(accountA, accountB, 33_333); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould transfer on round %d: %v.", failed, i, err)
				}
			}
			if _, _, err := db.WithdrawDebit(accountB, 40_000); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould withdraw from account B: %v.", failed, err)
			}
			if _, err := db.WithdrawCommit(accountB, 40_000, 0, 0); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould commit the withdrawal: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould run the full sequence.", success)

			var sum uint64
			for _, account := range db.CopyAccounts() {
				sum += account.Balance
			}

			totals := db.Totals()
			expected := totals.Genesis + totals.Minted - totals.Released
			if sum != expected {
				t.Fatalf("\t%s\tTest 0:\tShould conserve value, got %d exp %d.", failed, sum, expected)
			}
			t.Logf("\t%s\tTest 0:\tShould conserve value.", success)
		}
	}
}

func Test_Replay(t *testing.T) {
	storages := map[string]func(t *testing.T) database.Serializer{
		"memory": func(t *testing.T) database.Serializer {
			strg, err := memory.New()
			if err != nil {
				t.Fatal(err)
			}
			return strg
		},
		"disk": func(t *testing.T) database.Serializer {
			strg, err := disk.New(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			return strg
		},
	}

	t.Log("Given the need to validate journal replay rebuilds identical state.")
	{
		testID := 0
		for name, newStorage := range storages {
			t.Logf("\tTest %d:\tWhen replaying the journal from %s storage.", testID, name)
			{
				f := func(t *testing.T) {
					gen := newGenesis(10, map[string]uint64{accountA: 100_000})
					strg := newStorage(t)

					db, err := database.New(gen, strg, nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v.", failed, testID, err)
					}

					if _, err := db.Register(accountB, "pavel", 5_000); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould register: %v.", failed, testID, err)
					}
					if _, err := db.Transfer(accountA, accountB, 12_345); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould transfer: %v.", failed, testID, err)
					}
					if _, err := db.TransferBatch(accountA, []database.BatchItem{{To: accountB, Amount: 100}, {To: accountC, Amount: 777}}); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould batch transfer: %v.", failed, testID, err)
					}
					if _, err := db.SetStatus(accountB, database.StatusBanned); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould set status: %v.", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould run the mutation sequence.", success, testID)

					db2, err := database.New(gen, strg, nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to replay the journal: %v.", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to replay the journal.", success, testID)

					want := db.CopyAccounts()
					got := db2.CopyAccounts()
					if len(want) != len(got) {
						t.Fatalf("\t%s\tTest %d:\tShould rebuild the same account set, got %d exp %d.", failed, testID, len(got), len(want))
					}
					for accountID, account := range want {
						if got[accountID] != account {
							t.Errorf("\t%s\tTest %d:\tShould rebuild account %s identically.", failed, testID, accountID)
							t.Logf("\t%s\tTest %d:\tgot: %+v", failed, testID, got[accountID])
							t.Logf("\t%s\tTest %d:\texp: %+v", failed, testID, account)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould rebuild every account identically.", success, testID)

					if db.Totals() != db2.Totals() {
						t.Fatalf("\t%s\tTest %d:\tShould rebuild the same totals.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould rebuild the same totals.", success, testID)

					if db.LatestSeq() != db2.LatestSeq() {
						t.Fatalf("\t%s\tTest %d:\tShould rebuild the same sequence number.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould rebuild the same sequence number.", success, testID)
				}

				t.Run(name, f)
			}
			testID++
		}
	}
}

func Test_Fee(t *testing.T) {
	type table struct {
		amount      uint64
		basisPoints uint16
		fee         uint64
	}

	tt := []table{
		{amount: 999, basisPoints: 10, fee: 0},
		{amount: 1_000, basisPoints: 10, fee: 1},
		{amount: 1_000_000, basisPoints: 10, fee: 1_000},
		{amount: 10_000, basisPoints: 25, fee: 25},
		{amount: 3, basisPoints: 10_000, fee: 3},
		{amount: 18_446_744_073_709_551_615, basisPoints: 10_000, fee: 18_446_744_073_709_551_615},
		{amount: 18_446_744_073_709_551_615, basisPoints: 1, fee: 1_844_674_407_370_955},
	}

	t.Log("Given the need to validate exact fee arithmetic.")
	{
		for testID, tst := range tt {
			if fee := database.Fee(tst.amount, tst.basisPoints); fee != tst.fee {
				t.Errorf("\t%s\tTest %d:\tShould compute fee for %d at %dbps, got %d exp %d.", failed, testID, tst.amount, tst.basisPoints, fee, tst.fee)
			} else {
				t.Logf("\t%s\tTest %d:\tShould compute fee for %d at %dbps.", success, testID, tst.amount, tst.basisPoints)
			}
		}
	}
}
