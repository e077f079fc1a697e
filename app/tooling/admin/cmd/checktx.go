package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/foundation/algorand"
	"go.uber.org/zap"
)

var checkTxCmd = &cobra.Command{
	Use:   "checktx [txid]",
	Short: "Look up a transaction and decode its governance record",
	Args:  cobra.ExactArgs(1),
	Run:   checkTxRun,
}

func init() {
	rootCmd.AddCommand(checkTxCmd)
}

func checkTxRun(cmd *cobra.Command, args []string) {
	chain, err := algorand.New(algorand.Config{
		NodeURL:    nodeURL,
		IndexerURL: indexerURL,
	})
	if err != nil {
		log.Fatal(err)
	}

	lgr := ledger.NewCore(ledger.Config{
		Log:     zap.NewNop().Sugar(),
		Node:    chain,
		Indexer: chain,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tx, err := lgr.Read(ctx, args[0])
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(out))
}
