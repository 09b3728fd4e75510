package migration

import (
	"sync"
	"time"

	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// RunState is the user-visible progress of a migration
type RunState string

const (
	StateIncomplete RunState = "incomplete"
	StatePending    RunState = "pending"
	StateComplete   RunState = "complete"
)

// Run is the latest migration attempt of an identity
type Run struct {
	State     RunState  `json:"state"`
	Report    *Report   `json:"report,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Tracker keeps the run state of each identity in memory
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]Run)}
}

// Begin moves identity to pending. It fails if a run is already pending.
func (t *Tracker) Begin(identity string) error {
	key := wallet.NormalizeIdentity(identity)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runs[key].State == StatePending {
		return ErrMigrationInProgress
	}
	run := t.runs[key]
	run.State = StatePending
	run.UpdatedAt = time.Now()
	t.runs[key] = run
	return nil
}

// Finish marks the run complete regardless of per-asset outcomes
func (t *Tracker) Finish(identity string, report *Report) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs[wallet.NormalizeIdentity(identity)] = Run{
		State:     StateComplete,
		Report:    report,
		UpdatedAt: time.Now(),
	}
}

// Abort returns a pending run to its previous settled state
func (t *Tracker) Abort(identity string) {
	key := wallet.NormalizeIdentity(identity)

	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[key]
	if !ok || run.State != StatePending {
		return
	}
	if run.Report != nil {
		run.State = StateComplete
	} else {
		run.State = StateIncomplete
	}
	run.UpdatedAt = time.Now()
	t.runs[key] = run
}

// Get returns the run of identity, incomplete if none was started
func (t *Tracker) Get(identity string) Run {
	t.mu.RLock()
	defer t.mu.RUnlock()

	run, ok := t.runs[wallet.NormalizeIdentity(identity)]
	if !ok {
		return Run{State: StateIncomplete}
	}
	return run
}
