package config

import (
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Tally   TallyConfig
	Ledgers LedgerConfig
	OCR     OCRConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type TallyConfig struct {
	Host string
	Port int
}

// LedgerConfig holds the fallback ledger names used when a request does not
// override them.
type LedgerConfig struct {
	Bank     string
	Expense  string
	Income   string
	Suspense string
}

type OCRConfig struct {
	Language string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvAsInt("SERVER_PORT", 3000),
		},
		Tally: TallyConfig{
			Host: getEnv("TALLY_HOST", "localhost"),
			Port: getEnvAsInt("TALLY_PORT", 9000),
		},
		Ledgers: LedgerConfig{
			Bank:     getEnv("DEFAULT_BANK_LEDGER", "Bank Account"),
			Expense:  getEnv("DEFAULT_EXPENSE_LEDGER", "Miscellaneous Expenses"),
			Income:   getEnv("DEFAULT_INCOME_LEDGER", "Miscellaneous Income"),
			Suspense: getEnv("DEFAULT_SUSPENSE_LEDGER", "Suspense Account"),
		},
		OCR: OCRConfig{
			Language: getEnv("OCR_LANGUAGE", "eng"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
