package cmd

import (
	"fmt"
	"log"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/spf13/cobra"
)

var genAccountCmd = &cobra.Command{
	Use:   "genaccount",
	Short: "Generate a new wallet account for the configured network",
	Run:   genAccountRun,
}

func init() {
	rootCmd.AddCommand(genAccountCmd)
}

func genAccountRun(cmd *cobra.Command, args []string) {
	account := crypto.GenerateAccount()

	phrase, err := mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("address :", account.Address.String())
	fmt.Println("mnemonic:", phrase)
	fmt.Println()
	fmt.Println("Fund this account with the network dispenser before use.")
}
