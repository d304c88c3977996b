package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zkforge/rollup-forger/cmd/forger/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rollup-forger",
		Short: "A batch forger for zk-rollups",
		Long: `A batch forger for zk-rollups: it follows the rollup contract's events,
assembles batches, requests proofs from a proving service and submits
forgeBatch calls to the verifier contract.`,
	}

	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.StartCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
