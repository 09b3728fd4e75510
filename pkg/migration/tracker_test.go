package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateIncomplete, tr.Get("alice@example.com").State)

	require.NoError(t, tr.Begin("alice@example.com"))
	assert.Equal(t, StatePending, tr.Get("Alice@Example.com").State)
	assert.ErrorIs(t, tr.Begin("alice@example.com"), ErrMigrationInProgress)

	tr.Abort("alice@example.com")
	assert.Equal(t, StateIncomplete, tr.Get("alice@example.com").State)

	report := &Report{}
	require.NoError(t, tr.Begin("alice@example.com"))
	tr.Finish("alice@example.com", report)
	run := tr.Get("alice@example.com")
	assert.Equal(t, StateComplete, run.State)
	assert.Same(t, report, run.Report)

	// an aborted rerun keeps the previous report
	require.NoError(t, tr.Begin("alice@example.com"))
	tr.Abort("alice@example.com")
	run = tr.Get("alice@example.com")
	assert.Equal(t, StateComplete, run.State)
	assert.Same(t, report, run.Report)
}
