// Package cmd contains the admin tooling for the governance service.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeURL    string
	indexerURL string
	dbPath     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "node", "n", "https://testnet-api.algonode.cloud", "Algod node URL.")
	rootCmd.PersistentFlags().StringVarP(&indexerURL, "indexer", "i", "https://testnet-idx.algonode.cloud", "Indexer URL.")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "zdata/mirror.db", "Path to the mirror database.")
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative tasks for the governance service",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
