package commands

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zkforge/rollup-forger/batch"
	"github.com/zkforge/rollup-forger/config"
	"github.com/zkforge/rollup-forger/db"
	"github.com/zkforge/rollup-forger/eth"
	"github.com/zkforge/rollup-forger/prover"
	"github.com/zkforge/rollup-forger/rollup"
	"github.com/zkforge/rollup-forger/server"
	"github.com/zkforge/rollup-forger/tracker"
)

// StartCmd represents the start command
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the rollup forger",
	Long: `Start the rollup forger with the configuration from
~/.rollup-forger/config.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startCommand()
	},
}

func startCommand() error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})
	log.SetLevel(logrus.InfoLevel)

	ctx := context.Background()

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %v", err)
	}
	configPath := filepath.Join(home, ".rollup-forger", "config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if cfg.Prover.URL == "" {
		return fmt.Errorf("prover URL not configured")
	}
	if !common.IsHexAddress(cfg.Rollup.ContractAddress) {
		return fmt.Errorf("invalid rollup contract address %q", cfg.Rollup.ContractAddress)
	}
	contract := common.HexToAddress(cfg.Rollup.ContractAddress)

	forgeDB, err := db.NewLevelDB(cfg.Database.ForgeDBPath)
	if err != nil {
		return fmt.Errorf("failed to open forge database: %v", err)
	}
	defer forgeDB.Close()

	ethClient, err := eth.NewClient(cfg.General.EthRPCURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Ethereum client: %v", err)
	}
	defer ethClient.Close()

	forger, err := eth.NewForger(ethClient, contract, cfg.Rollup.ForgerKey,
		big.NewInt(cfg.Rollup.ChainID), log)
	if err != nil {
		return err
	}

	proverClient := prover.NewClient(cfg.Prover.URL, log)
	log.Infof("Initialized prover client with URL: %s", cfg.Prover.URL)

	tr, err := tracker.New(forgeDB, log)
	if err != nil {
		return err
	}

	// Until the external blob decoder is wired, events carry their record in
	// the raw scalars only.
	decoder := rollup.NewDecoder(noopTxDataDecoder{})

	builder := batch.NewBuilder(cfg.Rollup.BatchSize, big.NewInt(0), big.NewInt(0))

	runner, err := batch.NewRunner(ethClient, eth.NewRpcClient(cfg.General.EthRPCURL),
		contract, decoder, builder, proverClient, forger, tr, forgeDB,
		time.Duration(cfg.General.PollIntervalMs)*time.Millisecond, log)
	if err != nil {
		return err
	}
	go func() {
		if err := runner.Run(ctx); err != nil {
			log.Errorf("Forge runner stopped: %v", err)
		}
	}()

	log.Infof("Starting rollup forger status API on %s...", cfg.General.StatusPort)
	if err := server.Start(cfg.General.StatusPort, forgeDB, tr, log); err != nil {
		return fmt.Errorf("status server failed: %v", err)
	}
	return nil
}

// noopTxDataDecoder stands in for the contract's transaction-blob decoder;
// it yields an on-chain deposit record whose scalar fields the event decoder
// fills in.
type noopTxDataDecoder struct{}

func (noopTxDataDecoder) DecodeTxData(data []byte) (*rollup.Tx, error) {
	return &rollup.Tx{
		Type:    "deposit",
		Amount:  new(big.Int).SetBytes(data),
		OnChain: true,
	}, nil
}
