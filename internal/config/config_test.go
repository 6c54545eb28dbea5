package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatAccount0 = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", hardhatAccount0)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, "dev-token", cfg.APIToken)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "hardhat", cfg.Network)
	assert.Equal(t, uint8(8), cfg.MockDecimals)
	assert.Equal(t, "200000000000", cfg.MockInitialAnswer)
	assert.Equal(t, hardhatAccount0, cfg.OwnerAddress)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingOwner(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", "")

	_, err := Load()

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", hardhatAccount0)
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()

	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestLoad_DriverIsCaseInsensitive(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", hardhatAccount0)
	t.Setenv("STORAGE_DRIVER", "SQLite")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", hardhatAccount0)
	t.Setenv("MOCK_DECIMALS", "not-an-int")

	var cfg Config
	err := ParseEnv(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "explicit connection string wins",
			cfg:  DatabaseConfig{ConnString: "postgres://u:p@db/fundme", Host: "ignored"},
			want: "postgres://u:p@db/fundme",
		},
		{
			name: "built from parts",
			cfg:  DatabaseConfig{Host: "db", Port: "5433", User: "app", Password: "secret", Name: "ledger"},
			want: "host=db port=5433 user=app password=secret dbname=ledger sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("CALLER_ADDRESS", hardhatAccount0)
	t.Setenv("FUNDME_ADDR", "fundme:9090")

	cfg, err := LoadClient()

	require.NoError(t, err)
	assert.Equal(t, "fundme:9090", cfg.ServerAddr)
	assert.Equal(t, "0.1", cfg.FundAmount)
	assert.Equal(t, hardhatAccount0, cfg.CallerAddress)
}
