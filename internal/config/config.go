package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/omer-farooq/pairswap/internal/constants"
)

type Config struct {
	// Chain settings
	Cluster     string
	RPCUrl      string
	ProgramID   string
	PoolAccount string

	// Wallet settings
	WalletPrivateKey string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// API settings
	APIAddr string
	APIKey  string
	DevMode bool

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Confirmation polling
	PollInterval time.Duration
	MaxPolls     int

	// Safety limits
	MaxSlippagePercent    float64
	MaxPriceImpactPercent float64
}

func Load() *Config {
	return &Config{
		// Chain
		Cluster:     getEnv("SOLANA_CLUSTER", "devnet"),
		RPCUrl:      getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		ProgramID:   getEnv("POOL_PROGRAM_ID", ""),
		PoolAccount: getEnv("POOL_ACCOUNT", ""),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "pairswap"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// API
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Polling
		PollInterval: getDurationEnv("CONFIRM_POLL_INTERVAL", constants.PollInterval),
		MaxPolls:     getIntEnv("CONFIRM_MAX_POLLS", constants.MaxPollAttempts),

		// Safety
		MaxSlippagePercent:    getFloatEnv("MAX_SLIPPAGE_PERCENT", 10),
		MaxPriceImpactPercent: getFloatEnv("MAX_PRICE_IMPACT_PERCENT", 10),
	}
}

// Validate checks the settings a running service cannot do without.
func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if _, ok := constants.ClusterGenesisHashes[c.Cluster]; !ok {
		return fmt.Errorf("unknown cluster %q", c.Cluster)
	}
	if c.ProgramID == "" {
		return fmt.Errorf("POOL_PROGRAM_ID is required")
	}
	if c.PoolAccount == "" {
		return fmt.Errorf("POOL_ACCOUNT is required")
	}
	if c.MaxPolls <= 0 {
		return fmt.Errorf("CONFIRM_MAX_POLLS must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("CONFIRM_POLL_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
