package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool. It stays nil when the sink is disabled.
var DB *sql.DB

var ErrDBNotInitialized = errors.New("database not initialized")

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// DSN renders a postgres:// URL for lib/pq. Credentials are percent-encoded, so any
// character is allowed in the password.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	var err error
	DB, err = sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Connected to the PostgreSQL database")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

// EnsureSchema creates the sweep tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS sweeps (
			sweep_id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			output_file TEXT NOT NULL,
			run_count INTEGER NOT NULL,
			starting_balances DOUBLE PRECISION[] NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sweeps_created_at ON sweeps(created_at DESC);

		CREATE TABLE IF NOT EXISTS sweep_runs (
			run_id SERIAL PRIMARY KEY,
			sweep_id UUID NOT NULL REFERENCES sweeps(sweep_id) ON DELETE CASCADE,
			run_index INTEGER NOT NULL,
			cycles INTEGER NOT NULL,
			gas_dai DOUBLE PRECISION NOT NULL,
			starting_dai_balance DOUBLE PRECISION NOT NULL,
			total_dai_earned DOUBLE PRECISION NOT NULL,
			total_interest_paid DOUBLE PRECISION NOT NULL,
			dai_balance DOUBLE PRECISION NOT NULL,
			net_apy DOUBLE PRECISION NOT NULL,
			CONSTRAINT uq_sweep_runs_index UNIQUE (sweep_id, run_index)
		);
	`
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
