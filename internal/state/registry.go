/*

This file holds the in-memory record of the sweep in progress. The simulator appends to it
after every run and the web API reads it concurrently.

*/

package state

import (
	"sync"
	"time"

	"github.com/mihai6/FiatSim/internal/types"
)

type SweepStatus string

const (
	SweepPending  SweepStatus = "pending"
	SweepRunning  SweepStatus = "running"
	SweepComplete SweepStatus = "complete"
	SweepFailed   SweepStatus = "failed"
)

// SweepState is a point-in-time view of the registry.
type SweepState struct {
	SweepID       string      `json:"sweep_id"`
	Status        SweepStatus `json:"status"`
	ExpectedRuns  int         `json:"expected_runs"`
	CompletedRuns int         `json:"completed_runs"`
	Error         string      `json:"error,omitempty"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
}

// RunRegistry collects the records of the current sweep.
type RunRegistry struct {
	mu         sync.RWMutex
	sweepID    string
	expected   int
	status     SweepStatus
	errMsg     string
	startedAt  time.Time
	finishedAt time.Time
	records    []types.SummaryRecord
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{status: SweepPending}
}

// Begin resets the registry for a new sweep.
func (r *RunRegistry) Begin(sweepID string, expectedRuns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepID = sweepID
	r.expected = expectedRuns
	r.status = SweepRunning
	r.errMsg = ""
	r.startedAt = time.Now().UTC()
	r.finishedAt = time.Time{}
	r.records = nil
}

// Record appends the record of a finished run.
func (r *RunRegistry) Record(record types.SummaryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *RunRegistry) MarkComplete() {
	r.finish(SweepComplete, "")
}

// MarkFailed flags the sweep as failed. Records gathered so far stay visible but are
// never written to the output.
func (r *RunRegistry) MarkFailed(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.finish(SweepFailed, msg)
}

func (r *RunRegistry) finish(status SweepStatus, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.errMsg = msg
	r.finishedAt = time.Now().UTC()
}

// Records returns a copy of the records gathered so far.
func (r *RunRegistry) Records() []types.SummaryRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.SummaryRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *RunRegistry) Latest() (types.SummaryRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.records) == 0 {
		return types.SummaryRecord{}, false
	}
	return r.records[len(r.records)-1], true
}

// Get returns the record at index i in sweep order.
func (r *RunRegistry) Get(i int) (types.SummaryRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.records) {
		return types.SummaryRecord{}, false
	}
	return r.records[i], true
}

func (r *RunRegistry) Status() SweepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := SweepState{
		SweepID:       r.sweepID,
		Status:        r.status,
		ExpectedRuns:  r.expected,
		CompletedRuns: len(r.records),
		Error:         r.errMsg,
	}
	if !r.startedAt.IsZero() {
		started := r.startedAt
		st.StartedAt = &started
	}
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		st.FinishedAt = &finished
	}
	return st
}
