package commands

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/conf/v3"
)

// Journal dumps the committed journal records, optionally restricted to the
// records that touch the specified account.
func Journal(args conf.Args, db *database.Database) error {
	onlyAct := database.AccountID(args.Num(1))

	iter := db.ForEach()
	for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
		if err != nil {
			return err
		}

		if onlyAct != "" && record.From != onlyAct && record.To != onlyAct {
			continue
		}

		ts := time.UnixMilli(int64(record.TimeStamp)).UTC().Format(time.RFC3339)
		fmt.Printf("Seq: %-6d  %s  Op: %-14s  From: %-42s  To: %-42s  Amount: %-12d  Fee: %d\n",
			record.Seq, ts, record.Op, record.From, record.To, record.Amount, record.Fee)

		for _, item := range record.Items {
			fmt.Printf("\titem  To: %-42s  Amount: %d\n", item.To, item.Amount)
		}
	}

	return nil
}
