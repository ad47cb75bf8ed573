package journal

/*
Журнал циклов загрузки дашборда.

- Record не блокирует агрегатор: событие уходит в буферизованный канал,
  при переполнении сбрасывается с записью в лог (load shedding).
- Воркер копит пачку и пишет ее в хранилище по размеру пачки или по таймеру.
- Stop закрывает канал и ждет, пока воркер вычитает остаток и сделает финальный flush.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
)

// Storage: куда физически пишется журнал.
type Storage interface {
	WriteBatch(ctx context.Context, events []CycleEvent) error
}

type Journal struct {
	ch            chan CycleEvent
	repo          Storage
	logger        *zap.Logger
	batchSize     int
	flushInterval time.Duration

	wg       sync.WaitGroup
	mu       sync.RWMutex // Record держит RLock, Stop: Lock перед close(ch)
	closed   atomic.Bool
	stopOnce sync.Once
}

func New(repo Storage, cfg infra.JournalConfig, logger *zap.Logger) *Journal {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Journal{
		ch:            make(chan CycleEvent, cfg.BufferSize),
		repo:          repo,
		logger:        logger.Named("journal"),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop запирает вход и ждет финального flush. Повторный вызов ничего не делает.
func (j *Journal) Stop() {
	j.stopOnce.Do(func() {
		j.mu.Lock()
		j.closed.Store(true)
		close(j.ch)
		j.mu.Unlock()

		j.logger.Info("stopping journal: flushing buffer")
		j.wg.Wait()
		j.logger.Info("journal stopped")
	})
}

// RecordCycle реализует dashboard.CycleRecorder.
func (j *Journal) RecordCycle(r dashboard.CycleReport) {
	j.Record(EventFromReport(r))
}

func (j *Journal) Record(e CycleEvent) {
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed.Load() {
		j.logger.Warn("journal event dropped: journal is stopped", zap.String("id", e.ID))
		return
	}

	select {
	case j.ch <- e:
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("user_id", e.UserID),
			zap.String("outcome", e.Outcome))
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]CycleEvent, 0, j.batchSize)
	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: на остановке контекст сервиса уже отменен
		if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("journal flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case e, ok := <-j.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= j.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
