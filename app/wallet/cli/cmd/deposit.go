package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var depositAmount uint64

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit value into your account",
	Run:   depositRun,
}

func init() {
	rootCmd.AddCommand(depositCmd)
	depositCmd.Flags().Uint64VarP(&depositAmount, "amount", "v", 0, "Amount to deposit.")
}

func depositRun(cmd *cobra.Command, args []string) {
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
		Amount:    depositAmount,
	}

	post(fmt.Sprintf("%s/v1/tx/deposit", url), tx)
}
