package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// NodeRPC is the JSON-RPC endpoint of the local hardhat node.
	NodeRPC string
	// ForkRPC is the upstream endpoint the hardhat node forks from.
	ForkRPC string
	// ForkBlockNumber is the block the fork is pinned to.
	ForkBlockNumber uint64
)

const DefaultNodeRPC = "http://127.0.0.1:8545"

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	NodeRPC = getEnvOrDefault("NODE_RPC", DefaultNodeRPC)

	ForkRPC, err = getEnv("ALCHEMY_URL")
	if err != nil {
		return err
	}

	ForkBlockNumber, err = getEnvAsUint64("BLOCK_NUMBER")
	if err != nil {
		return err
	}

	// ForkRPC carries an API key, keep it out of the logs.
	log.Debug().
		Str("NodeRPC", NodeRPC).
		Uint64("ForkBlockNumber", ForkBlockNumber).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
