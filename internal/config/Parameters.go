/*

This file contains the default parameters for the leverage simulation.

Prices and rates are written as decimal strings and parsed into Wads so that no value
passes through floating point before it reaches the fixed-point arithmetic.

*/

package config

import (
	"time"

	"github.com/mihai6/FiatSim/internal/types"
	"github.com/mihai6/FiatSim/internal/utils"
)

// DefaultSimulationParameters is the baseline sweep: 10k to 150k DAI in 2k steps against
// the September 2022 DAI principal-token term.
var DefaultSimulationParameters = types.SimulationParameters{
	// --- Prices ---
	DaiPriceEth: utils.MustParseWad("0.0004965"), // ETH per DAI at the fork block.
	// Gas is paid in ETH; the inverse of this price converts it to DAI.

	FiatPriceDai: utils.MustParseWad("1"), // FIAT is valued at par.
	// Used both for the interest charge and for repaying the principal at maturity.

	// --- Debt ---
	FiatInterestRate: utils.MustParseWad("0.01"), // 1% annual stability fee on FIAT debt.

	// --- Term ---
	TermMaturity: time.Unix(1663361092, 0).UTC(),
	YearSeconds:  31536000, // 365 days.

	// --- Sweep range (whole DAI) ---
	StartBalance:     10000,
	BalanceIncrement: 2000,
	EndBalance:       150000,

	// --- Execution ---
	SwapDeadline: 100 * time.Second, // Deadline handed to the exchange swap.
	MaxCycles:    0,
}
