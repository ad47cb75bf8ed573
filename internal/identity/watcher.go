package identity

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
)

// Watcher слушает сигналы логаута в Redis и сообщает, чья сессия завершилась.
type Watcher struct {
	rdb     *redis.Client
	logger  *zap.Logger
	channel string
	backoff time.Duration
}

func NewWatcher(rdb *redis.Client, logger *zap.Logger) *Watcher {
	return &Watcher{
		rdb:     rdb,
		logger:  logger.Named("identity-watcher"),
		channel: infra.RedisChanLogout,
		backoff: 5 * time.Second,
	}
}

// Run держит "живучую" подписку: переподключается при обрыве, пока не отменен ctx.
func (w *Watcher) Run(ctx context.Context, onLogout func(userID string)) {
	for {
		pubsub := w.rdb.Subscribe(ctx, w.channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to subscribe", zap.String("chan", w.channel), zap.Error(err))
			if !sleepCtx(ctx, w.backoff) {
				return
			}
			continue
		}

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				userID := strings.TrimSpace(msg.Payload)
				if userID == "" {
					w.logger.Warn("empty logout signal")
					continue
				}
				w.logger.Info("logout signal received", zap.String("user_id", userID))
				onLogout(userID)
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

// IsRevoked проверяет, не завершена ли сессия пользователя до старта клиента.
func (w *Watcher) IsRevoked(ctx context.Context, userID string) (bool, error) {
	return w.rdb.SIsMember(ctx, infra.RedisSetRevoked, userID).Result()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
