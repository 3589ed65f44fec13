package vault

import (
	"context"
	"time"

	"github.com/mihai6/FiatSim/internal/types"
)

// Protocol defines the on-chain collaborators of the leverage strategy: the exchange pool
// that sells principal tokens, the collateral vault that lends FIAT against them, the
// stablecoin pool that swaps FIAT back to DAI, and the chain controls around them.
// All amounts are Wads.
type Protocol interface {
	// ReferenceTime returns the chain time the simulation is anchored to (the fork block).
	ReferenceTime(ctx context.Context) (time.Time, error)

	// SeedStablecoin leaves the signer holding exactly amount DAI.
	SeedStablecoin(ctx context.Context, amount types.Wad) error

	// NativeBalance returns the signer's ETH balance, used to measure gas spent.
	NativeBalance(ctx context.Context) (types.Wad, error)

	// PurchasePT swaps amount DAI for principal tokens and returns the PT balance.
	PurchasePT(ctx context.Context, amount types.Wad) (types.Wad, error)

	// CollateralizeForFiat locks the PT balance and borrows the maximum FIAT against it.
	// Returns the FIAT balance held afterwards.
	CollateralizeForFiat(ctx context.Context) (types.Wad, error)

	// SwapFiatForDai swaps the whole FIAT balance to DAI and returns the DAI balance.
	SwapFiatForDai(ctx context.Context) (types.Wad, error)

	// ResetChain restores the fork to its pinned block.
	ResetChain(ctx context.Context) error

	// Close cleans up any resources used by the protocol client.
	Close()
}
