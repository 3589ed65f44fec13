package simulator

import (
	"context"
	"fmt"

	"github.com/mihai6/FiatSim/internal/types"
)

// CycleFunc runs one leverage cycle starting from balance.
type CycleFunc func(ctx context.Context, balance types.Wad) (types.CycleResult, error)

// RunUntilUnprofitable repeats cycle, feeding each new balance into the next one, until a
// cycle earns a negative amount. That cycle is dropped from the totals. A positive
// maxCycles stops the loop after that many profitable cycles.
func RunUntilUnprofitable(ctx context.Context, start types.Wad, maxCycles int, cycle CycleFunc) (types.RunTotals, error) {
	totals := types.RunTotals{
		GasDai:            types.ZeroWad(),
		TotalDaiEarned:    types.ZeroWad(),
		TotalInterestPaid: types.ZeroWad(),
		DaiBalance:        start,
	}

	for maxCycles <= 0 || totals.Cycles < maxCycles {
		result, err := cycle(ctx, totals.DaiBalance)
		if err != nil {
			return types.RunTotals{}, fmt.Errorf("cycle %d: %w", totals.Cycles+1, err)
		}
		if result.DaiEarned.IsNegative() {
			break
		}

		totals.TotalDaiEarned = totals.TotalDaiEarned.Add(result.DaiEarned)
		totals.TotalInterestPaid = totals.TotalInterestPaid.Add(result.InterestDai)
		totals.GasDai = totals.GasDai.Add(result.GasDai)
		totals.DaiBalance = result.DaiBalance
		totals.Cycles++
	}

	return totals, nil
}

// NetAPY annualizes the earned amount: (earned / start) / maturityYearFactor.
func NetAPY(totalEarned, start, maturityYearFactor types.Wad) (types.Wad, error) {
	perStart, err := types.WDiv(totalEarned, start)
	if err != nil {
		return types.ZeroWad(), fmt.Errorf("starting balance: %w", err)
	}
	apy, err := types.WDiv(perStart, maturityYearFactor)
	if err != nil {
		return types.ZeroWad(), fmt.Errorf("maturity year factor: %w", err)
	}
	return apy, nil
}
