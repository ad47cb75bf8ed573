package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// runWatcher запускает Run в фоне и ждет, пока подписка появится на сервере.
func runWatcher(t *testing.T, mr *miniredis.Miniredis, w *Watcher) (<-chan string, context.CancelFunc) {
	t.Helper()
	got := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(userID string) { got <- userID })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(infra.RedisChanLogout)[infra.RedisChanLogout] == 1
	}, 2*time.Second, 10*time.Millisecond)
	return got, cancel
}

func TestWatcher_DeliversLogout(t *testing.T) {
	mr, rdb := newRedis(t)
	got, _ := runWatcher(t, mr, NewWatcher(rdb, zap.NewNop()))

	mr.Publish(infra.RedisChanLogout, " u1\n")

	select {
	case id := <-got:
		assert.Equal(t, "u1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("logout signal not delivered")
	}
}

func TestWatcher_EmptyPayloadIgnored(t *testing.T) {
	mr, rdb := newRedis(t)
	got, _ := runWatcher(t, mr, NewWatcher(rdb, zap.NewNop()))

	mr.Publish(infra.RedisChanLogout, "  ")
	mr.Publish(infra.RedisChanLogout, "u2")

	select {
	case id := <-got:
		assert.Equal(t, "u2", id, "blank payload must not reach the callback")
	case <-time.After(2 * time.Second):
		t.Fatal("logout signal not delivered")
	}
	assert.Empty(t, got)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	mr, rdb := newRedis(t)
	w := NewWatcher(rdb, zap.NewNop())
	_, cancel := runWatcher(t, mr, w)

	cancel()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(infra.RedisChanLogout)[infra.RedisChanLogout] == 0
	}, 2*time.Second, 10*time.Millisecond, "subscription must be closed")
}

func TestWatcher_RetriesUntilServerUp(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	w := NewWatcher(rdb, zap.NewNop())
	w.backoff = 10 * time.Millisecond

	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(userID string) {
			select {
			case got <- userID:
			default: // Повторные публикации из цикла ожидания
			}
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, mr.Restart())

	require.Eventually(t, func() bool {
		mr.Publish(infra.RedisChanLogout, "u3")
		select {
		case id := <-got:
			return id == "u3"
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_ReturnsWhenCancelledWhileDisconnected(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	w := NewWatcher(rdb, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(string) { t.Error("no signals expected") })
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored context cancellation during backoff")
	}
}

func TestIsRevoked(t *testing.T) {
	mr, rdb := newRedis(t)
	_, err := mr.SAdd(infra.RedisSetRevoked, "u1")
	require.NoError(t, err)
	w := NewWatcher(rdb, zap.NewNop())

	revoked, err := w.IsRevoked(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = w.IsRevoked(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.Close()
	_, err = w.IsRevoked(context.Background(), "u1")
	assert.Error(t, err)
}

func TestRedisStore_Get(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(infra.StorageKey(DefaultKey), `{"id":"u1","role":"admin"}`))
	s := NewRedisStore(rdb)

	raw, err := s.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","role":"admin"}`, string(raw))

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
