package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/mihai6/FiatSim/internal/state"
	"github.com/rs/zerolog/log"
)

// Drops the stored sweeps and recreates the empty schema.
func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	log.Info().Msg("Starting database reset script...")

	dbHost := os.Getenv("DB_HOST")
	dbUser := os.Getenv("DB_USER")
	dbName := os.Getenv("DB_NAME")
	dbSSLMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbUser == "" {
		log.Fatal().Msg("DB_USER environment variable not set.")
	}
	if dbName == "" {
		log.Fatal().Msg("DB_NAME environment variable not set.")
	}

	dbCfg := state.DBConfig{
		Host:     dbHost,
		Port:     parsePort(os.Getenv("DB_PORT")),
		User:     dbUser,
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   dbName,
		SSLMode:  dbSSLMode,
	}

	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("user", dbCfg.User).
		Str("dbname", dbCfg.DBName).
		Msg("Connecting to database")

	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database connection")
	}
	defer state.CloseDB()

	log.Info().Msg("Connected to database. Dropping sweep tables...")

	dropTablesQuery := `
		DROP TABLE IF EXISTS sweep_runs CASCADE;
		DROP TABLE IF EXISTS sweeps CASCADE;
	`
	if _, err := state.DB.Exec(dropTablesQuery); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop tables")
	}
	log.Info().Msg("Successfully dropped sweep tables")

	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate database schema")
	}
	log.Info().Msg("Database reset complete!")
}

func parsePort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 {
		return 5432
	}
	return port
}
