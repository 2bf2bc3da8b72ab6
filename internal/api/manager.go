package api

import (
	"context"
	"sync"

	"github.com/Jimmeey2323/freeze-history/internal/logging"
	"github.com/Jimmeey2323/freeze-history/internal/pipeline"
)

// RunStarter executes one pipeline run; satisfied by pipeline.Runner.
type RunStarter interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// RunManager serializes pipeline runs and retains the latest result for the
// read endpoints. At most one run is in flight at a time.
type RunManager struct {
	runner RunStarter
	base   context.Context
	log    *logging.Logger

	mu      sync.Mutex
	running bool
	latest  *pipeline.Result
	lastErr error
}

// NewRunManager constructs the manager. Runs execute under base, not the
// triggering request's context, so they outlive the HTTP call.
func NewRunManager(base context.Context, runner RunStarter, log *logging.Logger) *RunManager {
	return &RunManager{runner: runner, base: base, log: log}
}

// Start launches a run in the background. It reports false when a run is
// already active.
func (m *RunManager) Start() bool {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return false
	}
	m.running = true
	m.mu.Unlock()

	go func() {
		result, err := m.runner.Run(m.base)

		m.mu.Lock()
		m.running = false
		m.lastErr = err
		if err == nil {
			m.latest = result
		}
		m.mu.Unlock()

		if err != nil {
			m.log.Error("pipeline run failed", "error", err)
		}
	}()
	return true
}

// Running reports whether a run is in flight.
func (m *RunManager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Latest returns the most recent successful result, nil when none completed
// yet, plus the error of the last finished run.
func (m *RunManager) Latest() (*pipeline.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.lastErr
}
