package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mihai6/FiatSim/internal/types"
	"github.com/rs/zerolog/log"
)

// WriteSweepOutput writes records to path as a JSON array. The file is written to a
// temporary sibling first and renamed into place, so readers never see a partial array.
func WriteSweepOutput(path string, records []types.SummaryRecord) error {
	if records == nil {
		records = []types.SummaryRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sweep output: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp output file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write sweep output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync sweep output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close sweep output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move sweep output into place: %w", err)
	}

	log.Info().Str("path", path).Int("records", len(records)).Msg("Sweep output written")
	return nil
}
