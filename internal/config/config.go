package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	ConnString string `env:"DB_CONN_STR"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name       string `env:"DB_NAME" envDefault:"fundme"`
}

// DSN returns the explicit connection string, or builds one from the individual settings
func (c DatabaseConfig) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// Config is the server configuration
type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	GRPCAddr      string `env:"GRPC_ADDR" envDefault:":8080"`
	APIToken      string `env:"API_TOKEN" envDefault:"dev-token"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"fundme.db"`
	Database      DatabaseConfig

	// OwnerAddress is bound as the ledger owner at startup
	OwnerAddress string `env:"OWNER_ADDRESS,required,notEmpty"`

	Network           string `env:"NETWORK" envDefault:"hardhat"`
	PriceFeedAddress  string `env:"PRICE_FEED_ADDRESS" envDefault:"0x5FbDB2315678afecb367f032d93f642f64180aa3"`
	MockDecimals      uint8  `env:"MOCK_DECIMALS" envDefault:"8"`
	MockInitialAnswer string `env:"MOCK_INITIAL_ANSWER" envDefault:"200000000000"`
}

// ClientConfig is the configuration of the command line clients
type ClientConfig struct {
	ServerAddr    string `env:"FUNDME_ADDR" envDefault:"localhost:8080"`
	APIToken      string `env:"API_TOKEN" envDefault:"dev-token"`
	CallerAddress string `env:"CALLER_ADDRESS,required,notEmpty"`
	FundAmount    string `env:"FUND_AMOUNT" envDefault:"0.1"` // ether
}

// Load reads the server configuration from .env files and the environment
// Variables already set in the environment win over .env files.
func Load() (Config, error) {
	loadDotEnv()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	return cfg, nil
}

// LoadClient reads the client configuration from .env files and the environment
func LoadClient() (ClientConfig, error) {
	loadDotEnv()

	var cfg ClientConfig
	if err := ParseEnv(&cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values env tags cannot express
func (c Config) Validate() error {
	driver := strings.ToLower(c.StorageDriver)
	switch driver {
	case StorageMemory, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if driver == StorageSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// loadDotEnv reads .env files if present. Missing files are not an error.
func loadDotEnv() {
	_ = godotenv.Load(".env", ".env.local")
}
