package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	doc := `{
	"date": "2026-01-15T00:00:00Z",
	"ledger_id": "test",
	"treasury": "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8",
	"admin": "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
	"fee_basis_points": 10,
	"base_reputation": 100,
	"max_batch_size": 25,
	"balances": {
		"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 1000000
	}
}`

	t.Log("Given the need to validate loading the genesis file.")
	{
		t.Logf("\tTest 0:\tWhen loading a well formed file.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the file: %v.", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the file: %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the file.", success)

			if gen.FeeBasisPoints != 10 || gen.MaxBatchSize != 25 || len(gen.Balances) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the configured values: %+v.", failed, gen)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the configured values.", success)
		}
	}
}

func Test_Validate(t *testing.T) {
	base := genesis.Genesis{
		LedgerID:       "test",
		Treasury:       "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8",
		Admin:          "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
		FeeBasisPoints: 10,
		MaxBatchSize:   25,
	}

	type table struct {
		name   string
		mutate func(g genesis.Genesis) genesis.Genesis
		valid  bool
	}

	tt := []table{
		{name: "well formed", mutate: func(g genesis.Genesis) genesis.Genesis { return g }, valid: true},
		{name: "missing treasury", mutate: func(g genesis.Genesis) genesis.Genesis { g.Treasury = ""; return g }, valid: false},
		{name: "missing admin", mutate: func(g genesis.Genesis) genesis.Genesis { g.Admin = ""; return g }, valid: false},
		{name: "fee over 10000", mutate: func(g genesis.Genesis) genesis.Genesis { g.FeeBasisPoints = 10_001; return g }, valid: false},
		{name: "fee at 10000", mutate: func(g genesis.Genesis) genesis.Genesis { g.FeeBasisPoints = 10_000; return g }, valid: true},
		{name: "zero batch size", mutate: func(g genesis.Genesis) genesis.Genesis { g.MaxBatchSize = 0; return g }, valid: false},
	}

	t.Log("Given the need to validate the genesis consistency checks.")
	{
		for testID, tst := range tt {
			err := tst.mutate(base).Validate()
			switch {
			case tst.valid && err != nil:
				t.Errorf("\t%s\tTest %d:\tShould accept a %s genesis: %v.", failed, testID, tst.name, err)
			case !tst.valid && err == nil:
				t.Errorf("\t%s\tTest %d:\tShould reject a %s genesis.", failed, testID, tst.name)
			default:
				t.Logf("\t%s\tTest %d:\tShould handle a %s genesis.", success, testID, tst.name)
			}
		}
	}
}
