package main

import (
	"context"

	"github.com/mihai6/FiatSim/internal/config"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/mihai6/FiatSim/internal/simulator"
	"github.com/mihai6/FiatSim/internal/state"
	"github.com/mihai6/FiatSim/internal/vault"
	"github.com/mihai6/FiatSim/internal/wallet"
	"github.com/mihai6/FiatSim/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main runs one sweep of the leverage simulation and writes the records to OUTPUT_FILE.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel, config.LogFormat)
	log.Info().Msg("FiatSim starting...")

	ctx := context.Background()

	// Optional Postgres sink
	if config.DatabaseEnabled() {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
	}

	// --- Start Web Server ---
	registry := state.NewRunRegistry()
	if config.WebPort != "" {
		webServer := web.NewWebServer(config.WebPort, registry)
		go func() {
			log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting progress API")
			if err := webServer.Start(); err != nil {
				log.Error().Err(err).Msg("Web server failed to start")
			}
		}()
	}

	// --- 2. Chain Clients ---
	walletClient, err := wallet.NewClient(ctx, config.NodeRPC, config.SignerPrivateKey)
	if err != nil {
		log.Fatal().Err(err).Str("node", config.NodeRPC).Msg("Failed to connect wallet client")
	}

	params := config.DefaultSimulationParameters
	params.MaxCycles = config.MaxCycles

	protocol, err := vault.NewFiatClient(vault.FiatClientConfig{
		Wallet:       walletClient,
		Addresses:    config.MainnetAddresses,
		ForkURL:      config.ForkRPC,
		ForkBlock:    config.ForkBlockNumber,
		SwapDeadline: params.SwapDeadline,
	})
	if err != nil {
		walletClient.Close()
		log.Fatal().Err(err).Msg("Failed to initialize protocol client")
	}
	defer protocol.Close()

	// Start from a clean fork so leftovers of an earlier invocation don't leak in.
	if err := protocol.ResetChain(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to reset chain before the sweep")
	}

	// --- 3. Create Simulator with Dependency Injection ---
	sim, err := simulator.NewSimulator(simulator.Config{
		Protocol: protocol,
		Params:   params,
		Recorder: registry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulator")
	}

	// --- 4. Sweep ---
	registry.Begin(sim.SweepID(), len(sim.StartingBalances()))
	records, err := sim.RunSweep(ctx)
	if err != nil {
		registry.MarkFailed(err)
		log.Fatal().Err(err).Msg("Sweep failed, no output written")
	}

	if err := state.WriteSweepOutput(config.OutputFile, records); err != nil {
		registry.MarkFailed(err)
		log.Fatal().Err(err).Msg("Failed to write sweep output")
	}

	if state.DB != nil {
		if err := state.SaveSweep(sim.SweepID(), config.OutputFile, records); err != nil {
			registry.MarkFailed(err)
			log.Fatal().Err(err).Msg("Failed to save sweep to database")
		}
	}

	registry.MarkComplete()
	log.Info().
		Str("sweep_id", sim.SweepID()).
		Int("runs", len(records)).
		Str("output", config.OutputFile).
		Msg("FiatSim finished")
}
