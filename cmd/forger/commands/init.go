package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zkforge/rollup-forger/config"
)

// InitCmd represents the init command
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the rollup forger",
	Long: `Initialize the rollup forger: create the home directory and write a
config.toml seeded from the provided flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	InitCmd.Flags().String("eth.rpc-url", "http://127.0.0.1:8545", "Ethereum RPC URL")
	InitCmd.Flags().String("rollup.contract", "", "Rollup contract address")
	InitCmd.Flags().Int64("rollup.chain-id", 1337, "Settlement chain ID")
	InitCmd.Flags().String("rollup.forger-key", "", "Hex private key used to sign forgeBatch calls")
	InitCmd.Flags().Int("rollup.batch-size", 128, "Transactions per batch")
	InitCmd.Flags().String("prover.url", "", "Proving service URL")
	InitCmd.Flags().String("status.port", ":8080", "Status API port")

	InitCmd.MarkFlagRequired("rollup.contract")
	InitCmd.MarkFlagRequired("rollup.forger-key")
	InitCmd.MarkFlagRequired("prover.url")
}

func initCommand(cmd *cobra.Command) error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".rollup-forger")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %v", dir, err)
	}

	cfg := config.Default()
	cfg.General.EthRPCURL, _ = cmd.Flags().GetString("eth.rpc-url")
	cfg.General.StatusPort, _ = cmd.Flags().GetString("status.port")
	cfg.Rollup.ContractAddress, _ = cmd.Flags().GetString("rollup.contract")
	cfg.Rollup.ChainID, _ = cmd.Flags().GetInt64("rollup.chain-id")
	cfg.Rollup.ForgerKey, _ = cmd.Flags().GetString("rollup.forger-key")
	cfg.Rollup.BatchSize, _ = cmd.Flags().GetInt("rollup.batch-size")
	cfg.Prover.URL, _ = cmd.Flags().GetString("prover.url")
	cfg.Database.ForgeDBPath = filepath.Join(dir, "forge_db")

	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %v", configPath, err)
	}

	log.Infof("Wrote configuration to %s", configPath)
	return nil
}
