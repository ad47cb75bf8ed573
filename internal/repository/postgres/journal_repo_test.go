package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/cybermarket-dashboard/internal/journal"
)

func TestBuildInsert(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []journal.CycleEvent{
		{ID: "a", UserID: "u1", Role: "customer", Trigger: "mount", Outcome: "success", DurationMs: 12, StartedAt: at},
		{ID: "b", UserID: "u1", Role: "customer", Trigger: "timer", Outcome: "request_failed", Status: 502, Error: "bad gateway", StartedAt: at},
	}

	query, vals := buildInsert(events)

	assert.Contains(t, query, "INSERT INTO dashboard_cycles (id, user_id, role, trigger, outcome, status, error, duration_ms, total_mismatch, started_at) VALUES ")
	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7, $8, $9, $10), ($11, $12,")
	assert.Contains(t, query, "$20)")
	assert.NotContains(t, query, "$21")

	require.Len(t, vals, 20)
	assert.Equal(t, "a", vals[0])
	assert.Equal(t, "b", vals[10])
	assert.Equal(t, 502, vals[15])
	assert.Equal(t, at, vals[19])
}
