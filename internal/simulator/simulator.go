package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mihai6/FiatSim/internal/logger"
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/mihai6/FiatSim/internal/utils"
	"github.com/mihai6/FiatSim/internal/vault"
	"github.com/rs/zerolog"
)

var ErrInvalidParameters = errors.New("invalid simulation parameters")

// Recorder receives each run's record as soon as it is summarized.
type Recorder interface {
	Record(record types.SummaryRecord)
}

// Simulator drives leverage runs against a Protocol across a range of starting balances.
type Simulator struct {
	logger   zerolog.Logger
	protocol vault.Protocol
	params   types.SimulationParameters
	recorder Recorder
	sweepID  string
}

// Config holds the configuration for creating a new Simulator instance
type Config struct {
	Protocol vault.Protocol
	Params   types.SimulationParameters
	Recorder Recorder // optional
	SweepID  string   // generated when empty
}

// NewSimulator creates a new Simulator with dependency injection
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := validateSimulatorConfig(cfg); err != nil {
		return nil, fmt.Errorf("simulator configuration validation failed: %w", err)
	}

	s := &Simulator{
		logger:   logger.GetForComponent("simulator"),
		protocol: cfg.Protocol,
		params:   cfg.Params,
		recorder: cfg.Recorder,
		sweepID:  cfg.SweepID,
	}
	if s.sweepID == "" {
		s.sweepID = uuid.New().String()
	}

	s.logger.Info().
		Str("sweep_id", s.sweepID).
		Int64("startBalance", cfg.Params.StartBalance).
		Int64("endBalance", cfg.Params.EndBalance).
		Int64("increment", cfg.Params.BalanceIncrement).
		Int("maxCycles", cfg.Params.MaxCycles).
		Msg("Simulator created")

	return s, nil
}

func validateSimulatorConfig(cfg Config) error {
	if cfg.Protocol == nil {
		return fmt.Errorf("protocol cannot be nil")
	}
	p := cfg.Params
	if !p.DaiPriceEth.IsPositive() {
		return fmt.Errorf("%w: DAI price in ETH must be positive", ErrInvalidParameters)
	}
	if !p.FiatPriceDai.IsPositive() {
		return fmt.Errorf("%w: FIAT price in DAI must be positive", ErrInvalidParameters)
	}
	if p.FiatInterestRate.IsNegative() {
		return fmt.Errorf("%w: FIAT interest rate cannot be negative", ErrInvalidParameters)
	}
	if p.YearSeconds <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, ErrInvalidYearLength)
	}
	if p.StartBalance <= 0 || p.BalanceIncrement <= 0 || p.EndBalance < p.StartBalance {
		return fmt.Errorf("%w: sweep range %d..%d step %d", ErrInvalidParameters,
			p.StartBalance, p.EndBalance, p.BalanceIncrement)
	}
	if p.MaxCycles < 0 {
		return fmt.Errorf("%w: max cycles cannot be negative", ErrInvalidParameters)
	}
	return nil
}

// SweepID identifies the sweep in logs and in the database sink.
func (s *Simulator) SweepID() string {
	return s.sweepID
}

// StartingBalances lists the sweep's starting balances in whole DAI, inclusive of both ends.
func (s *Simulator) StartingBalances() []int64 {
	var balances []int64
	for b := s.params.StartBalance; b <= s.params.EndBalance; b += s.params.BalanceIncrement {
		balances = append(balances, b)
	}
	return balances
}

// RunSweep performs one leverage run per starting balance and returns a record per run,
// in increasing balance order. The chain is reset after every run. Any failure aborts the
// sweep and no records are returned.
func (s *Simulator) RunSweep(ctx context.Context) ([]types.SummaryRecord, error) {
	sweepStart := time.Now()
	sweepLogger := s.logger.With().Str("sweep_id", s.sweepID).Logger()

	balances := s.StartingBalances()
	sweepLogger.Info().Int("runs", len(balances)).Msg("--- Starting sweep ---")

	refTime, err := s.protocol.ReferenceTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference time: %w", err)
	}
	factor, err := MaturityYearFactor(refTime, s.params.TermMaturity, s.params.YearSeconds)
	if err != nil {
		return nil, err
	}
	rates, err := NewCycleRates(s.params, factor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	sweepLogger.Info().
		Time("referenceTime", refTime).
		Str("maturityYearFactor", utils.WadToString(factor)).
		Str("ethPriceDai", utils.WadToString(rates.EthPriceDai)).
		Msg("Sweep constants derived")

	records := make([]types.SummaryRecord, 0, len(balances))
	for _, units := range balances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, err := s.runLeverage(ctx, types.WadFromUnits(units), rates, factor, sweepLogger)
		if err != nil {
			return nil, fmt.Errorf("run starting at %d DAI failed: %w", units, err)
		}

		record, err := SummaryToRecord(summary)
		if err != nil {
			return nil, fmt.Errorf("run starting at %d DAI: %w", units, err)
		}
		records = append(records, record)
		if s.recorder != nil {
			s.recorder.Record(record)
		}

		if err := s.protocol.ResetChain(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset chain after %d DAI run: %w", units, err)
		}
	}

	sweepLogger.Info().
		Int("runs", len(records)).
		Dur("duration", time.Since(sweepStart)).
		Msg("--- Sweep complete ---")

	return records, nil
}

// runLeverage funds the account with start DAI, loops cycles until one is unprofitable and
// annualizes the result.
func (s *Simulator) runLeverage(ctx context.Context, start types.Wad, rates CycleRates, factor types.Wad, sweepLogger zerolog.Logger) (types.RunSummary, error) {
	runID := uuid.New().String()
	runLogger := sweepLogger.With().
		Str("run_id", runID).
		Str("startingDaiBalance", utils.WadToString(start)).
		Logger()

	runLogger.Info().Msg("Starting leverage run")

	if err := s.protocol.SeedStablecoin(ctx, start); err != nil {
		return types.RunSummary{}, fmt.Errorf("failed to seed DAI: %w", err)
	}

	cycle := func(ctx context.Context, balance types.Wad) (types.CycleResult, error) {
		return s.runCycle(ctx, balance, rates, runLogger)
	}
	totals, err := RunUntilUnprofitable(ctx, start, s.params.MaxCycles, cycle)
	if err != nil {
		return types.RunSummary{}, err
	}
	if s.params.MaxCycles > 0 && totals.Cycles == s.params.MaxCycles {
		runLogger.Warn().Int("maxCycles", s.params.MaxCycles).Msg("Cycle cap reached before an unprofitable cycle")
	}

	apy, err := NetAPY(totals.TotalDaiEarned, start, factor)
	if err != nil {
		return types.RunSummary{}, err
	}

	runLogger.Info().
		Int("cycles", totals.Cycles).
		Str("totalDaiEarned", utils.WadToString(totals.TotalDaiEarned)).
		Str("netAPY", utils.WadToString(apy)).
		Msg("Leverage run complete")

	return types.RunSummary{
		RunID:              runID,
		StartingDaiBalance: start,
		Totals:             totals,
		NetAPY:             apy,
	}, nil
}

// SummaryToRecord converts the scaled integers of a run into the reported decimal values.
func SummaryToRecord(summary types.RunSummary) (types.SummaryRecord, error) {
	record := types.SummaryRecord{Cycles: summary.Totals.Cycles}
	fields := []struct {
		name string
		src  types.Wad
		dst  *float64
	}{
		{"gasDai", summary.Totals.GasDai, &record.GasDai},
		{"startingDaiBalance", summary.StartingDaiBalance, &record.StartingDaiBalance},
		{"totalDaiEarned", summary.Totals.TotalDaiEarned, &record.TotalDaiEarned},
		{"totalInterestPaid", summary.Totals.TotalInterestPaid, &record.TotalInterestPaid},
		{"daiBalance", summary.Totals.DaiBalance, &record.DaiBalance},
		{"netAPY", summary.NetAPY, &record.NetAPY},
	}

	for _, f := range fields {
		v, err := utils.WadToFloat64(f.src)
		if err != nil {
			return types.SummaryRecord{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return record, nil
}
