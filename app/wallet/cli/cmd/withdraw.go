package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var withdrawAmount uint64

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw value from your account",
	Run:   withdrawRun,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.Flags().Uint64VarP(&withdrawAmount, "amount", "v", 0, "Amount to withdraw.")
}

func withdrawRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)

	tx := struct {
		AccountID string `json:"account_id"`
		Amount    uint64 `json:"amount"`
	}{
		AccountID: string(accountID),
		Amount:    withdrawAmount,
	}

	post(fmt.Sprintf("%s/v1/tx/withdraw", url), tx)
}
