package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Security   SecurityConfig
	Storage    StorageConfig
	Realtime   RealtimeConfig
	Withdrawal WithdrawalConfig
	Deposit    DepositConfig
	Market     MarketConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration. Driver is "postgres" or
// "sqlite"; SQLitePath is only read for the latter.
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds session encryption settings
type SecurityConfig struct {
	SessionEncryptionKey string
	SessionExpiry        time.Duration
}

// StorageConfig controls uploaded objects.
type StorageConfig struct {
	PublicBaseURL  string
	MaxUploadBytes int64
}

// RealtimeConfig selects the change feed broker: "redis", "postgres" or
// "memory" (single instance, no fan-out between processes).
type RealtimeConfig struct {
	Broker string
}

// WithdrawalConfig holds withdrawal rules.
type WithdrawalConfig struct {
	MinAmount decimal.Decimal
}

// DepositConfig maps asset codes to receiving addresses.
type DepositConfig struct {
	Addresses map[string]string
}

// MarketConfig controls the market movers feed.
type MarketConfig struct {
	FeedURL         string
	Symbols         []string
	RefreshInterval time.Duration
	CacheTTL        time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "postgres"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "merovian"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("DB_SQLITE_PATH", "merovian.db"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			SessionExpiry:        getEnvAsDuration("SESSION_EXPIRY", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			PublicBaseURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			MaxUploadBytes: int64(getEnvAsInt("STORAGE_MAX_UPLOAD_BYTES", 10<<20)),
		},
		Realtime: RealtimeConfig{
			Broker: getEnv("REALTIME_BROKER", "redis"),
		},
		Withdrawal: WithdrawalConfig{
			MinAmount: getEnvAsDecimal("WITHDRAWAL_MIN_AMOUNT", decimal.NewFromInt(10)),
		},
		Deposit: DepositConfig{
			Addresses: map[string]string{
				"btc":        getEnv("DEPOSIT_ADDRESS_BTC", "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"),
				"eth":        getEnv("DEPOSIT_ADDRESS_ETH", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"),
				"usdt_erc20": getEnv("DEPOSIT_ADDRESS_USDT_ERC20", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"),
				"usdt_trc20": getEnv("DEPOSIT_ADDRESS_USDT_TRC20", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"),
				"usdc":       getEnv("DEPOSIT_ADDRESS_USDC", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"),
				"sol":        getEnv("DEPOSIT_ADDRESS_SOL", "vines1vzrYbzRbs2CRoM4ceBAzhdBTO780vfs777777"),
			},
		},
		Market: MarketConfig{
			FeedURL:         getEnv("MARKET_FEED_URL", "https://api.binance.com/api/v3/ticker/24hr"),
			Symbols:         getEnvAsList("MARKET_SYMBOLS", []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "ADAUSDT", "DOGEUSDT", "XRPUSDT"}),
			RefreshInterval: getEnvAsDuration("MARKET_REFRESH_INTERVAL", time.Minute),
			CacheTTL:        getEnvAsDuration("MARKET_CACHE_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
