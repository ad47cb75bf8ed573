package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

// DefaultKey: имя записи с сериализованным пользователем.
const DefaultKey = "user"

// Load читает Identity из хранилища один раз.
// Любая проблема (нет записи, битый JSON, пустой id, неизвестная роль, истекшая сессия)
// превращается в domain.ErrIdentityUnavailable с причиной внутри.
func Load(ctx context.Context, store Store, key string) (domain.Identity, error) {
	if key == "" {
		key = DefaultKey
	}

	raw, err := store.Get(ctx, key)
	if err != nil {
		return nil, unavailable(err)
	}

	id, err := domain.ParseIdentity(raw)
	if err != nil {
		return nil, unavailable(err)
	}
	if id.ID() == "" {
		return nil, unavailable(errors.New("identity has empty id"))
	}

	if tok := id.Token(); tok != "" {
		if err := checkSession(tok, time.Now()); err != nil {
			return nil, unavailable(err)
		}
	}
	return id, nil
}

func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, cause)
}

// checkSession отбрасывает заведомо истекшие токены.
// Подпись на клиенте не проверяется (ключа нет), это делает сервер.
func checkSession(tokenStr string, now time.Time) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return fmt.Errorf("session token: %w", err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return fmt.Errorf("session token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return nil
}
