/*

This file contains the types produced and consumed by the leverage simulation:
the per-cycle result, the running totals of one run, and the per-run summary record
that is serialized at the end of a sweep.

*/

package types

import "time"

// SimulationParameters holds the constants that drive one sweep.
// Prices and rates are Wads; balances in the sweep range are whole DAI units.
type SimulationParameters struct {
	DaiPriceEth      Wad // ETH per DAI, used to value gas
	FiatPriceDai     Wad // DAI per FIAT, used for interest and repayment
	FiatInterestRate Wad // Annual rate charged on FIAT debt

	TermMaturity time.Time // Maturity of the principal token
	YearSeconds  int64

	StartBalance     int64
	BalanceIncrement int64
	EndBalance       int64

	SwapDeadline time.Duration
	MaxCycles    int // 0 means no cap
}

// CycleResult is the outcome of one leverage cycle.
type CycleResult struct {
	GasDai               Wad
	InterestDai          Wad
	DaiBalanceOnMaturity Wad
	DaiBalance           Wad // DAI held after swapping the borrowed FIAT back
	DaiEarned            Wad
}

// RunTotals accumulates the profitable cycles of one run.
type RunTotals struct {
	Cycles            int
	GasDai            Wad
	TotalDaiEarned    Wad
	TotalInterestPaid Wad
	DaiBalance        Wad
}

// RunSummary is the scaled-integer result of one run over a single starting balance.
type RunSummary struct {
	RunID              string
	StartingDaiBalance Wad
	Totals             RunTotals
	NetAPY             Wad
}

// SummaryRecord is the human-readable form of a RunSummary written to the output file.
// Keys match the format produced by earlier versions of the simulator.
type SummaryRecord struct {
	Cycles             int     `json:"cycles"`
	GasDai             float64 `json:"gasDai"`
	StartingDaiBalance float64 `json:"startingDaiBalance"`
	TotalDaiEarned     float64 `json:"totalDaiEarned"`
	TotalInterestPaid  float64 `json:"totalInterestPaid"`
	DaiBalance         float64 `json:"daiBalance"`
	NetAPY             float64 `json:"netAPY"`
}
