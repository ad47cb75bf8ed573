package journal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStorage struct {
	mu      sync.Mutex
	batches [][]CycleEvent
	err     error
}

func (s *memStorage) WriteBatch(_ context.Context, events []CycleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]CycleEvent(nil), events...))
	return s.err
}

func (s *memStorage) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestStop_DrainsBuffer(t *testing.T) {
	repo := &memStorage{}
	j := New(repo, infra.JournalConfig{BatchSize: 100, FlushInterval: time.Hour}, zap.NewNop())
	j.Start()

	for i := 0; i < 42; i++ {
		j.Record(CycleEvent{ID: "e", Outcome: "success"})
	}
	j.Stop()

	assert.Equal(t, 42, repo.total())
}

func TestFlush_BySize(t *testing.T) {
	repo := &memStorage{}
	j := New(repo, infra.JournalConfig{BatchSize: 10, FlushInterval: time.Hour}, zap.NewNop())
	j.Start()
	defer j.Stop()

	for i := 0; i < 25; i++ {
		j.Record(CycleEvent{Outcome: "success"})
	}

	require.Eventually(t, func() bool { return repo.total() >= 20 }, time.Second, 5*time.Millisecond)
	repo.mu.Lock()
	assert.Len(t, repo.batches[0], 10)
	repo.mu.Unlock()
}

func TestFlush_ByTimer(t *testing.T) {
	repo := &memStorage{}
	j := New(repo, infra.JournalConfig{BatchSize: 100, FlushInterval: 10 * time.Millisecond}, zap.NewNop())
	j.Start()
	defer j.Stop()

	j.Record(CycleEvent{Outcome: "request_aborted"})

	assert.Eventually(t, func() bool { return repo.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRecord_AfterStopDropped(t *testing.T) {
	repo := &memStorage{}
	j := New(repo, infra.JournalConfig{}, zap.NewNop())
	j.Start()
	j.Stop()

	assert.NotPanics(t, func() { j.Record(CycleEvent{}) })
	assert.NotPanics(t, j.Stop)
	assert.Zero(t, repo.total())
}

func TestFlushError_DoesNotStopWorker(t *testing.T) {
	repo := &memStorage{err: errors.New("db down")}
	j := New(repo, infra.JournalConfig{BatchSize: 1, FlushInterval: time.Hour}, zap.NewNop())
	j.Start()

	j.Record(CycleEvent{})
	j.Record(CycleEvent{})
	j.Stop()

	assert.Equal(t, 2, repo.total())
}

func TestEventFromReport(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ok := EventFromReport(dashboard.CycleReport{
		UserID:    "p1",
		Role:      domain.RoleProvider,
		Trigger:   dashboard.TriggerTimer,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	})
	assert.NotEmpty(t, ok.ID)
	assert.Equal(t, "success", ok.Outcome)
	assert.Equal(t, "provider", ok.Role)
	assert.Equal(t, "timer", ok.Trigger)
	assert.Equal(t, int64(1500), ok.DurationMs)
	assert.Zero(t, ok.Status)

	failed := EventFromReport(dashboard.CycleReport{
		Err: &domain.RequestFailedError{Status: http.StatusBadGateway},
	})
	assert.Equal(t, "request_failed", failed.Outcome)
	assert.Equal(t, http.StatusBadGateway, failed.Status)

	aborted := EventFromReport(dashboard.CycleReport{Err: domain.ErrRequestAborted})
	assert.Equal(t, "request_aborted", aborted.Outcome)
	assert.Zero(t, aborted.Status)
}
