package dashboard

/*
Aggregator: агрегатор статистики дашборда.

Жизненный цикл: Start (mount) -> загрузка Identity -> первый цикл -> поллинг -> Stop (unmount).
- Re-entrancy: не больше одного цикла в полете на экземпляр. Триггер во время активного
  цикла отбрасывается, а не ставится в очередь.
- Таймаут основного запроса отменяет сам вызов. Поздний ответ отмененной попытки
  никогда не попадает в состояние: цикл уже вернулся, а поколение сменилось.
- Ошибки не пробрасываются наружу, все оседает в полях Snapshot.
*/

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/identity"
	"go.uber.org/zap"
)

// StatsSource: то, что агрегатору нужно от API-клиента.
type StatsSource interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	Company(ctx context.Context) (*domain.Company, error)
}

// tokenSetter реализует apiclient.Client: токен сессии берется из Identity.
type tokenSetter interface {
	SetToken(token string)
}

// CycleRecorder получает отчет о каждом завершенном цикле (журнал).
type CycleRecorder interface {
	RecordCycle(r CycleReport)
}

type Config struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DevMode        bool // Поллинг выключен
	IdentityKey    string
}

type Trigger string

const (
	TriggerMount  Trigger = "mount"
	TriggerTimer  Trigger = "timer"
	TriggerManual Trigger = "manual"
)

type Aggregator struct {
	source   StatsSource
	store    identity.Store
	cfg      Config
	logger   *zap.Logger
	metrics  *Metrics
	recorder CycleRecorder

	inFlight   atomic.Bool
	generation atomic.Uint64

	mu        sync.RWMutex
	user      domain.Identity
	stats     *domain.DashboardStats
	company   *domain.Company
	loading   bool
	errMsg    string
	errKind   domain.ErrorKind
	updatedAt time.Time

	// Состояние монтирования и таймера
	lifeMu    sync.Mutex
	mounted   bool
	mountCtx  context.Context
	cancel    context.CancelFunc
	pollDone  chan struct{}
	cycleDone chan struct{} // закрывается, когда текущий цикл полностью завершен
}

type Option func(*Aggregator)

func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func WithRecorder(r CycleRecorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

func New(source StatsSource, store identity.Store, cfg Config, logger *zap.Logger, opts ...Option) *Aggregator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.IdentityKey == "" {
		cfg.IdentityKey = identity.DefaultKey
	}

	a := &Aggregator{
		source: source,
		store:  store,
		cfg:    cfg,
		logger: logger.Named("dashboard"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}
	return a
}

// Start монтирует агрегатор: читает Identity, выполняет первый цикл и взводит таймер.
// Возвращается после первого цикла. Повторный вызов без Stop ничего не делает.
func (a *Aggregator) Start(ctx context.Context) {
	a.lifeMu.Lock()
	if a.mounted {
		a.lifeMu.Unlock()
		return
	}
	mountCtx, cancel := context.WithCancel(ctx)
	a.mounted = true
	a.mountCtx = mountCtx
	a.cancel = cancel
	a.lifeMu.Unlock()

	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()

	// 1. Identity: без нее сеть не трогаем и таймер не взводим
	user, err := identity.Load(mountCtx, a.store, a.cfg.IdentityKey)

	a.lifeMu.Lock()
	if mountCtx.Err() != nil {
		a.lifeMu.Unlock()
		return // Stop пришел раньше, чем загрузилась identity
	}
	a.mu.Lock()
	if err != nil {
		a.user = nil
		a.loading = false
		a.errMsg = domain.ErrIdentityUnavailable.Error()
		a.errKind = domain.KindIdentityUnavailable
	} else {
		a.user = user
	}
	a.mu.Unlock()
	a.lifeMu.Unlock()

	if err != nil {
		a.logger.Warn("identity unavailable, dashboard disabled", zap.Error(err))
		a.metrics.Cycles.WithLabelValues(string(domain.KindIdentityUnavailable)).Inc()
		return
	}

	if ts, ok := a.source.(tokenSetter); ok && user.Token() != "" {
		ts.SetToken(user.Token())
	}
	a.logger.Info("dashboard mounted",
		zap.String("user_id", user.ID()),
		zap.String("role", string(user.Role())))

	// 2. Первый цикл ровно один раз
	a.runCycle(mountCtx, TriggerMount)

	// 3. Поллинг
	if a.cfg.DevMode {
		a.logger.Info("dev mode: polling disabled")
		return
	}

	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if mountCtx.Err() != nil {
		return // Размонтировали во время первого цикла
	}
	done := make(chan struct{})
	a.pollDone = done
	go a.poll(mountCtx, done)
}

// Stop размонтирует агрегатор: гасит таймер, дожидается его горутины и очищает состояние.
// Идемпотентен и безопасен без предшествующего Start.
func (a *Aggregator) Stop() {
	if a.unmount() {
		a.reset("", domain.KindNone)
	}
}

// ClearIdentity: сессия пользователя закончилась (логаут). Поллинг останавливается,
// данные очищаются, в снапшоте остается ошибка identity_unavailable.
func (a *Aggregator) ClearIdentity() {
	a.unmount()
	a.reset(domain.ErrIdentityUnavailable.Error(), domain.KindIdentityUnavailable)
	a.logger.Info("identity cleared")
}

func (a *Aggregator) unmount() bool {
	a.lifeMu.Lock()
	wasMounted := a.mounted
	cancel, pollDone, cycleDone := a.cancel, a.pollDone, a.cycleDone
	a.mounted = false
	a.mountCtx = nil
	a.cancel, a.pollDone, a.cycleDone = nil, nil, nil
	a.lifeMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pollDone != nil {
		<-pollDone
	}
	// Ручной Refetch мог прийти с контекстом, который не отменяется
	if cycleDone != nil {
		<-cycleDone
	}
	return wasMounted
}

func (a *Aggregator) reset(errMsg string, kind domain.ErrorKind) {
	a.mu.Lock()
	// Результат цикла, который еще в полете, больше не будет записан
	a.generation.Add(1)
	a.user = nil
	a.stats = nil
	a.company = nil
	a.loading = false
	a.errMsg = errMsg
	a.errKind = kind
	a.mu.Unlock()
}

// Refetch запускает один цикл вручную. Если цикл уже идет, вызов отбрасывается и
// возвращает false: вызывающий не должен рассчитывать, что запрос точно ушел.
func (a *Aggregator) Refetch(ctx context.Context) bool {
	return a.runCycle(ctx, TriggerManual)
}

func (a *Aggregator) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runCycle(ctx, TriggerTimer)
		}
	}
}

func (a *Aggregator) runCycle(ctx context.Context, trigger Trigger) bool {
	a.mu.RLock()
	user := a.user
	a.mu.RUnlock()
	if user == nil {
		return false // Без identity сеть не трогаем
	}

	if !a.inFlight.CompareAndSwap(false, true) {
		a.metrics.SkippedTriggers.WithLabelValues(string(trigger)).Inc()
		a.logger.Debug("fetch cycle already in flight, trigger dropped", zap.String("trigger", string(trigger)))
		return false
	}

	// Цикл живет не дольше монтирования: unmount отменяет его и дожидается
	mountCtx, done, ok := a.enterCycle()
	if !ok {
		a.inFlight.Store(false)
		return false
	}
	defer close(done)

	ctx, cancel := bindContext(ctx, mountCtx)
	defer cancel()

	// Поколение меняется под тем же локом, что и identity
	a.mu.Lock()
	if a.user == nil || a.user.ID() != user.ID() {
		a.mu.Unlock()
		a.inFlight.Store(false)
		return false
	}
	gen := a.generation.Add(1)
	a.loading = true
	a.errMsg = ""
	a.errKind = domain.KindNone
	a.mu.Unlock()

	start := time.Now()
	report := CycleReport{
		UserID:    user.ID(),
		Role:      user.Role(),
		Trigger:   trigger,
		StartedAt: start,
	}
	a.metrics.InFlight.Set(1)

	// finally: UI никогда не должен зависнуть в loading
	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
		a.inFlight.Store(false)
		a.metrics.InFlight.Set(0)

		report.Duration = time.Since(start)
		if report.Err != nil && mountCtx.Err() != nil {
			// Размонтирование, а не таймаут: в метрики и журнал не попадает
			a.logger.Debug("fetch cycle cancelled by unmount", zap.String("trigger", string(trigger)))
			return
		}
		a.metrics.CycleDuration.Observe(report.Duration.Seconds())
		a.metrics.Cycles.WithLabelValues(report.Outcome()).Inc()
		if a.recorder != nil {
			a.recorder.RecordCycle(report)
		}
	}()

	// 1. Основной запрос статистики
	stats, err := callWithTimeout(ctx, a.cfg.RequestTimeout, a.source.DashboardStats)
	if err != nil {
		report.Err = err
		if mountCtx.Err() == nil {
			a.fail(gen, err)
		}
		return true
	}

	if stats.Normalize() {
		report.TotalMismatch = true
		a.metrics.TotalMismatch.Inc()
		a.logger.Warn("packages.total disagrees with per-status counts, recomputed",
			zap.Int("total", stats.Packages.Total))
	}
	a.commit(gen, func() {
		a.stats = stats
		a.updatedAt = time.Now()
	})

	// 2. Профиль организации: только для поставщиков
	if provider, ok := user.(domain.Provider); ok {
		a.refreshCompany(ctx, gen, provider)
	}
	return true
}

// enterCycle регистрирует цикл в текущем монтировании. false: агрегатор не смонтирован.
func (a *Aggregator) enterCycle() (context.Context, chan struct{}, bool) {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if a.mountCtx == nil || a.mountCtx.Err() != nil {
		return nil, nil, false
	}
	done := make(chan struct{})
	a.cycleDone = done
	return a.mountCtx, done, true
}

// bindContext возвращает контекст, который отменяется вместе с ctx или с mountCtx.
func bindContext(ctx, mountCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(mountCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// refreshCompany запрашивает профиль организации. Ошибка не считается ошибкой цикла:
// у нового поставщика профиля нет, эндпоинт честно отвечает 404.
func (a *Aggregator) refreshCompany(ctx context.Context, gen uint64, provider domain.Provider) {
	company, err := callWithTimeout(ctx, a.cfg.RequestTimeout, a.source.Company)
	if err != nil {
		a.metrics.CompanyFetches.WithLabelValues("failed").Inc()
		a.logger.Info("organization profile unavailable",
			zap.String("user_id", provider.ID()),
			zap.Error(err))
		a.commit(gen, func() { a.company = nil })
		return
	}

	result := "found"
	if company == nil {
		result = "absent"
	}
	a.metrics.CompanyFetches.WithLabelValues(result).Inc()
	a.commit(gen, func() { a.company = company })
}

func (a *Aggregator) fail(gen uint64, err error) {
	kind := domain.Classify(err)

	// Таймаут и ответ сервера для пользователя выглядят одинаково, в логах: различаются
	if kind == domain.KindRequestAborted {
		a.logger.Warn("dashboard stats request aborted", zap.Duration("timeout", a.cfg.RequestTimeout), zap.Error(err))
	} else {
		a.logger.Error("dashboard stats request failed", zap.Error(err))
	}

	// stats не трогаем: старые данные остаются на экране
	a.commit(gen, func() {
		a.errMsg = describe(err)
		a.errKind = kind
	})
}

// commit применяет изменение только если с начала цикла поколение не сменилось.
func (a *Aggregator) commit(gen uint64, apply func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation.Load() != gen {
		return
	}
	apply()
}

func describe(err error) string {
	var rf *domain.RequestFailedError
	switch {
	case errors.Is(err, domain.ErrRequestAborted):
		return "dashboard stats request timed out"
	case errors.As(err, &rf):
		return fmt.Sprintf("failed to fetch dashboard stats: status %d", rf.Status)
	default:
		return fmt.Sprintf("failed to fetch dashboard stats: %v", err)
	}
}

// callWithTimeout выполняет вызов с клиентским таймаутом. По таймауту контекст вызова
// отменяется и функция возвращается сразу, не дожидаясь ответа: поздний результат
// уходит в буферизованный канал и выбрасывается.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		ch <- outcome{v, err}
	}()

	select {
	case o := <-ch:
		if o.err != nil && ctx.Err() != nil && !errors.Is(o.err, domain.ErrRequestAborted) {
			return o.val, fmt.Errorf("%w: %w", domain.ErrRequestAborted, o.err)
		}
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", domain.ErrRequestAborted, ctx.Err())
	}
}
