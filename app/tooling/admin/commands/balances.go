package commands

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/conf/v3"
)

// Balances returns the current set of balances.
func Balances(args conf.Args, db *database.Database) error {
	onlyAct := args.Num(1)

	fmt.Printf("LatestSeq: %d\n\n", db.LatestSeq())

	accounts := db.CopyAccounts()

	ids := make([]database.AccountID, 0, len(accounts))
	for accountID := range accounts {
		if onlyAct != "" && onlyAct != string(accountID) {
			continue
		}
		ids = append(ids, accountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, accountID := range ids {
		account := accounts[accountID]
		fmt.Printf("Account: %s  Status: %-9s  Reputation: %d  Balance: %d\n",
			accountID, account.Status, account.Reputation, account.Balance)
	}

	return nil
}
