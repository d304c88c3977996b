package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config holds the application configuration
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Database DatabaseConfig `toml:"database"`
	Rollup   RollupConfig   `toml:"rollup"`
	Prover   ProverConfig   `toml:"prover"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	EthRPCURL      string `toml:"eth_rpc_url"`
	StatusPort     string `toml:"status_port"`
	PollIntervalMs int64  `toml:"poll_interval_ms"`
}

// DatabaseConfig holds database paths
type DatabaseConfig struct {
	ForgeDBPath string `toml:"forge_db_path"`
}

// RollupConfig holds the rollup contract settings
type RollupConfig struct {
	ContractAddress string `toml:"contract_address"`
	ChainID         int64  `toml:"chain_id"`
	ForgerKey       string `toml:"forger_key"`
	BatchSize       int    `toml:"batch_size"`
}

// ProverConfig holds the proving service settings
type ProverConfig struct {
	URL string `toml:"url"`
}

// Load reads the TOML file at path and returns the Config struct
func Load(path string) (Config, error) {
	var cfg Config
	file, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := toml.Unmarshal(file, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	return cfg, nil
}

// Default returns the configuration written by the init command
func Default() Config {
	return Config{
		General: GeneralConfig{
			EthRPCURL:      "http://127.0.0.1:8545",
			StatusPort:     ":8080",
			PollIntervalMs: 5000,
		},
		Database: DatabaseConfig{
			ForgeDBPath: "./data/forge_db",
		},
		Rollup: RollupConfig{
			ContractAddress: "0x0000000000000000000000000000000000000000",
			ChainID:         1337,
			BatchSize:       128,
		},
		Prover: ProverConfig{
			URL: "http://127.0.0.1:3000",
		},
	}
}
