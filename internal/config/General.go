package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds the application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// SignerPrivateKey is the hex key of the account that runs the strategy.
	// Defaults to the first hardhat development account.
	SignerPrivateKey string

	// OutputFile is where the sweep records are written.
	OutputFile string

	// MaxCycles caps the leverage loop of a single run. 0 disables the cap.
	MaxCycles int

	// WebPort enables the progress API when set.
	WebPort string

	// LogLevel and LogFormat configure the logger ("console" or "json").
	LogLevel  string
	LogFormat string
)

const (
	DefaultSignerPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	DefaultOutputFile       = "fiatsim.json"
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Only the fork endpoint and block are mandatory; everything else has a default.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	SignerPrivateKey = strings.TrimPrefix(getEnvOrDefault("SIGNER_PRIVATE_KEY", DefaultSignerPrivateKey), "0x")
	OutputFile = getEnvOrDefault("OUTPUT_FILE", DefaultOutputFile)
	WebPort = getEnvOrDefault("WEB_PORT", "")
	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	LogFormat = getEnvOrDefault("LOG_FORMAT", "console")

	MaxCycles, err = getEnvAsIntOrDefault("MAX_CYCLES", 0)
	if err != nil {
		return err
	}
	if MaxCycles < 0 {
		return errors.New("environment variable MAX_CYCLES must not be negative")
	}

	if err := loadEndpointConfig(); err != nil {
		return err
	}

	if err := loadDatabaseConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("OutputFile", OutputFile).
		Int("MaxCycles", MaxCycles).
		Str("WebPort", WebPort).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, falling back to def when unset or empty.
func getEnvOrDefault(key, def string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return def
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsIntOrDefault retrieves an environment variable as an int, falling back to def when unset.
func getEnvAsIntOrDefault(key string, def int) (int, error) {
	valueStr := getEnvOrDefault(key, "")
	if valueStr == "" {
		return def, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}
