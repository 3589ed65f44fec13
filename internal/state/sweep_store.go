package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/mihai6/FiatSim/internal/types"
	"github.com/rs/zerolog/log"
)

// SweepInfo is the header row of a stored sweep.
type SweepInfo struct {
	SweepID          string    `json:"sweep_id"`
	CreatedAt        time.Time `json:"created_at"`
	OutputFile       string    `json:"output_file"`
	RunCount         int       `json:"run_count"`
	StartingBalances []float64 `json:"starting_balances"`
}

// SaveSweep stores a completed sweep and all its runs in one transaction.
func SaveSweep(sweepID, outputFile string, records []types.SummaryRecord) (err error) {
	if DB == nil {
		return ErrDBNotInitialized
	}
	id, err := uuid.Parse(sweepID)
	if err != nil {
		return fmt.Errorf("invalid sweep id %q: %w", sweepID, err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		`INSERT INTO sweeps (sweep_id, output_file, run_count, starting_balances) VALUES ($1, $2, $3, $4);`,
		id.String(), outputFile, len(records), pq.Array(startingBalances(records)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sweep %s: %w", sweepID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sweep_runs (
			sweep_id, run_index, cycles, gas_dai, starting_dai_balance,
			total_dai_earned, total_interest_paid, dai_balance, net_apy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err = stmt.Exec(id.String(), i, r.Cycles, r.GasDai, r.StartingDaiBalance,
			r.TotalDaiEarned, r.TotalInterestPaid, r.DaiBalance, r.NetAPY)
		if err != nil {
			return fmt.Errorf("failed to insert run %d of sweep %s: %w", i, sweepID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sweep %s: %w", sweepID, err)
	}

	log.Info().Str("sweep_id", sweepID).Int("runs", len(records)).Msg("Sweep saved to database")
	return nil
}

// GetSweepRuns loads the runs of a sweep in sweep order.
func GetSweepRuns(sweepID string) ([]types.SummaryRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	rows, err := DB.Query(`
		SELECT cycles, gas_dai, starting_dai_balance, total_dai_earned,
			total_interest_paid, dai_balance, net_apy
		FROM sweep_runs
		WHERE sweep_id = $1
		ORDER BY run_index ASC
	`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs of sweep %s: %w", sweepID, err)
	}
	defer rows.Close()

	records := make([]types.SummaryRecord, 0)
	for rows.Next() {
		var r types.SummaryRecord
		if err := rows.Scan(&r.Cycles, &r.GasDai, &r.StartingDaiBalance, &r.TotalDaiEarned,
			&r.TotalInterestPaid, &r.DaiBalance, &r.NetAPY); err != nil {
			return nil, fmt.Errorf("failed to scan run of sweep %s: %w", sweepID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}

// GetRecentSweeps lists stored sweeps, newest first.
func GetRecentSweeps(limit int) ([]SweepInfo, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := DB.Query(`
		SELECT sweep_id, created_at, output_file, run_count, starting_balances
		FROM sweeps
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sweeps: %w", err)
	}
	defer rows.Close()

	sweeps := make([]SweepInfo, 0, limit)
	for rows.Next() {
		var s SweepInfo
		if err := rows.Scan(&s.SweepID, &s.CreatedAt, &s.OutputFile, &s.RunCount,
			pq.Array(&s.StartingBalances)); err != nil {
			return nil, fmt.Errorf("failed to scan sweep row: %w", err)
		}
		sweeps = append(sweeps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return sweeps, nil
}

func startingBalances(records []types.SummaryRecord) []float64 {
	balances := make([]float64, len(records))
	for i, r := range records {
		balances[i] = r.StartingDaiBalance
	}
	return balances
}
