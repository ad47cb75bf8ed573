package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

// Client: HTTP-клиент API маркетплейса. Безопасен для конкурентного использования.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter

	retryAttempts uint
	retryDelay    time.Duration

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient подменяет транспорт (тесты, прокси).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryDelay задает базовую задержку бэкоффа для чтений списков.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// New создает клиент с настройками надежности из конфига.
func New(cfg infra.APIConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          &http.Client{},
		logger:        logger.Named("api-client"),
		limiter:       newLimiter(cfg.RateLimit, cfg.RateBurst),
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    200 * time.Millisecond,
	}
	c.cb = newBreaker(cfg, c.logger)

	for _, opt := range opts {
		opt(c)
	}
	if c.retryAttempts == 0 {
		c.retryAttempts = 1
	}
	return c
}

// SetToken задает bearer-токен сессии для всех последующих запросов.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// send выполняет один запрос и возвращает тело успешного ответа.
// Ошибки: domain.ErrRequestAborted (ctx), domain.ErrNoResponse (сеть),
// *domain.ResponseError (не-2xx), *ThrottleError (429 с Retry-After).
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	// 1. Rate Limiter
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, aborted(ctx)
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// 2. Сборка запроса
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return nil, err
	}

	// 3. Circuit Breaker: 5xx и сетевые сбои считаются отказом, 4xx считается нормальным ответом
	start := time.Now()
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, req)
	})

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit %s: %w", domain.ErrNoResponse, c.cb.Name(), err)
		}
		return nil, err
	}

	r := res.(*result)
	if r.status < 200 || r.status >= 300 {
		return nil, r.failure()
	}
	return r.body, nil
}

type result struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

func (r *result) failure() error {
	respErr := &domain.ResponseError{Status: r.status, Body: r.body}
	if r.status == http.StatusTooManyRequests {
		return &ThrottleError{RetryAfter: r.retryAfter, Cause: respErr}
	}
	return respErr
}

func (c *Client) roundTrip(ctx context.Context, req *http.Request) (*result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, aborted(ctx)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNoResponse, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, aborted(ctx)
		}
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrNoResponse, err)
	}

	r := &result{
		status:     resp.StatusCode,
		body:       body,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	if r.status >= 500 {
		// Для предохранителя это отказ, наружу уходит тот же ResponseError
		return r, r.failure()
	}
	return r, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func aborted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", domain.ErrRequestAborted, ctx.Err())
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
