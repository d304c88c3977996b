package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	raw := `
[general]
eth_rpc_url = "http://10.0.0.5:8545"
status_port = ":9090"
poll_interval_ms = 2500

[database]
forge_db_path = "/var/lib/forger/db"

[rollup]
contract_address = "0xabc0000000000000000000000000000000000001"
chain_id = 5
forger_key = "deadbeef"
batch_size = 16

[prover]
url = "http://prover:3000"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "http://10.0.0.5:8545", cfg.General.EthRPCURL)
	require.Equal(t, int64(2500), cfg.General.PollIntervalMs)
	require.Equal(t, "/var/lib/forger/db", cfg.Database.ForgeDBPath)
	require.Equal(t, int64(5), cfg.Rollup.ChainID)
	require.Equal(t, 16, cfg.Rollup.BatchSize)
	require.Equal(t, "http://prover:3000", cfg.Prover.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
