package apiclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newBreaker(cfg infra.APIConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.CBMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "marketplace-api",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Отмена запроса вызывающей стороной (unmount, shutdown): не вина сервера.
		// DeadlineExceeded остается сбоем: сервер не уложился в клиентский таймаут.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// withRetry повторяет идемпотентное чтение. Мутации и запрос статистики сюда не попадают:
// мутации нельзя дублировать, а статистику восстановит следующий цикл поллинга.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			// Сервер сам сказал, сколько ждать
			var tErr *ThrottleError
			if errors.As(err, &tErr) && tErr.RetryAfter > 0 {
				return tErr.RetryAfter
			}
			return retry.BackOffDelay(n, err, config)
		}),
	)
	return r.Do(fn)
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrRequestAborted) {
		return false
	}
	var tErr *ThrottleError
	if errors.As(err, &tErr) {
		return true
	}
	var rf *domain.RequestFailedError
	if errors.As(err, &rf) {
		return rf.Status >= http.StatusInternalServerError
	}
	return errors.Is(err, domain.ErrNoResponse)
}
