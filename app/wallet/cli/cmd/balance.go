package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type info struct {
	AccountID  string `json:"account_id"`
	Name       string `json:"name"`
	Balance    uint64 `json:"balance"`
	Reputation uint64 `json:"reputation"`
	Status     string `json:"status"`
}

type actInfo struct {
	LatestSeq uint64 `json:"latest_seq"`
	Accounts  []info `json:"accounts"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var ai actInfo
	if err := json.NewDecoder(resp.Body).Decode(&ai); err != nil {
		log.Fatal(err)
	}

	if len(ai.Accounts) > 0 {
		fmt.Println(ai.Accounts[0].Balance)
	}
}
