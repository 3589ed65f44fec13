package config

import (
	"github.com/rs/zerolog/log"
)

// Database configuration for the optional Postgres sink.
// These are populated at startup by the LoadConfig function.
var (
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// DatabaseEnabled reports whether the Postgres sink was configured.
func DatabaseEnabled() bool {
	return DBHost != ""
}

// loadDatabaseConfig loads the sink settings. Nothing is required unless DB_HOST is set.
func loadDatabaseConfig() error {
	var err error

	DBHost = getEnvOrDefault("DB_HOST", "")
	DBPassword = getEnvOrDefault("DB_PASSWORD", "")
	DBSSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	DBPort, err = getEnvAsIntOrDefault("DB_PORT", 5432)
	if err != nil {
		return err
	}

	if !DatabaseEnabled() {
		DBUser, DBName = "", ""
		log.Debug().Msg("DB_HOST not set, database sink disabled")
		return nil
	}

	if DBUser, err = getEnv("DB_USER"); err != nil {
		return err
	}
	if DBName, err = getEnv("DB_NAME"); err != nil {
		return err
	}

	log.Debug().
		Str("DBHost", DBHost).
		Int("DBPort", DBPort).
		Str("DBName", DBName).
		Msg("Database configuration loaded successfully.")

	return nil
}
