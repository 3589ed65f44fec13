package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mihai6/FiatSim/internal/types"
	"github.com/mihai6/FiatSim/internal/utils"
	"github.com/rs/zerolog"
)

var (
	ErrNonPositiveMaturity = errors.New("term maturity is not after the reference time")
	ErrInvalidYearLength   = errors.New("year length must be positive")
)

// CycleRates are the per-sweep constants the cycle arithmetic needs.
type CycleRates struct {
	EthPriceDai    types.Wad // DAI per ETH
	InterestFactor types.Wad // maturity year factor * annual rate * FIAT price
	FiatPriceDai   types.Wad
}

// CycleInputs are the balances observed around one leverage cycle.
type CycleInputs struct {
	StartingBalance types.Wad // DAI put into the cycle
	PTBalance       types.Wad
	FiatDebt        types.Wad
	DaiBalance      types.Wad // DAI received for the borrowed FIAT
	NativeBefore    types.Wad
	NativeAfter     types.Wad
}

// MaturityYearFactor is the fraction of a year between now and maturity.
func MaturityYearFactor(now, maturity time.Time, yearSeconds int64) (types.Wad, error) {
	if yearSeconds <= 0 {
		return types.ZeroWad(), ErrInvalidYearLength
	}
	remaining := maturity.Unix() - now.Unix()
	if remaining <= 0 {
		return types.ZeroWad(), fmt.Errorf("%w: maturity %s, reference %s",
			ErrNonPositiveMaturity, maturity.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return types.WDiv(types.WadFromUnits(remaining), types.WadFromUnits(yearSeconds))
}

// NewCycleRates derives the cycle constants from the sweep parameters.
func NewCycleRates(params types.SimulationParameters, maturityYearFactor types.Wad) (CycleRates, error) {
	ethPriceDai, err := types.WDiv(types.OneWad(), params.DaiPriceEth)
	if err != nil {
		return CycleRates{}, fmt.Errorf("DAI price in ETH: %w", err)
	}
	return CycleRates{
		EthPriceDai:    ethPriceDai,
		InterestFactor: types.WMul(types.WMul(maturityYearFactor, params.FiatInterestRate), params.FiatPriceDai),
		FiatPriceDai:   params.FiatPriceDai,
	}, nil
}

// ComputeCycle values one cycle at maturity: the PTs redeem at par, the borrowed FIAT is
// repaid in full with interest, and gas is charged in DAI.
func ComputeCycle(in CycleInputs, rates CycleRates) types.CycleResult {
	gasDai := types.WMul(in.NativeBefore.Sub(in.NativeAfter), rates.EthPriceDai)
	interestDai := types.WMul(in.FiatDebt, rates.InterestFactor)
	repayment := types.WMul(in.FiatDebt, rates.FiatPriceDai)

	onMaturity := in.PTBalance.
		Sub(gasDai).
		Sub(interestDai).
		Add(in.DaiBalance).
		Sub(repayment)

	return types.CycleResult{
		GasDai:               gasDai,
		InterestDai:          interestDai,
		DaiBalanceOnMaturity: onMaturity,
		DaiBalance:           in.DaiBalance,
		DaiEarned:            onMaturity.Sub(in.StartingBalance),
	}
}

// runCycle executes buy PT -> borrow FIAT -> swap back to DAI and values the result.
func (s *Simulator) runCycle(ctx context.Context, amount types.Wad, rates CycleRates, runLogger zerolog.Logger) (types.CycleResult, error) {
	nativeBefore, err := s.protocol.NativeBalance(ctx)
	if err != nil {
		return types.CycleResult{}, err
	}

	ptBalance, err := s.protocol.PurchasePT(ctx, amount)
	if err != nil {
		return types.CycleResult{}, fmt.Errorf("purchase PT: %w", err)
	}

	fiatDebt, err := s.protocol.CollateralizeForFiat(ctx)
	if err != nil {
		return types.CycleResult{}, fmt.Errorf("collateralize for FIAT: %w", err)
	}

	daiBalance, err := s.protocol.SwapFiatForDai(ctx)
	if err != nil {
		return types.CycleResult{}, fmt.Errorf("swap FIAT for DAI: %w", err)
	}

	nativeAfter, err := s.protocol.NativeBalance(ctx)
	if err != nil {
		return types.CycleResult{}, err
	}

	result := ComputeCycle(CycleInputs{
		StartingBalance: amount,
		PTBalance:       ptBalance,
		FiatDebt:        fiatDebt,
		DaiBalance:      daiBalance,
		NativeBefore:    nativeBefore,
		NativeAfter:     nativeAfter,
	}, rates)

	runLogger.Info().
		Str("daiBalanceOnMaturity", utils.WadToString(result.DaiBalanceOnMaturity)).
		Str("daiEarned", utils.WadToString(result.DaiEarned)).
		Str("gasDai", utils.WadToString(result.GasDai)).
		Msg("Cycle valued")

	return result, nil
}
