package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "cybermarket"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanLogout: сигнал о завершении сессии пользователя. Payload: user_id.
	RedisChanLogout = RedisNamespace + ":identity:logout"
)

// Множества (состояние)
const (
	// RedisSetRevoked: user_id завершенных сессий. Нужен, чтобы не пропустить логаут,
	// случившийся, пока клиент был выключен.
	RedisSetRevoked = RedisNamespace + ":identity:revoked_set"
)

// StorageKey строит ключ локального хранилища в Redis, например cybermarket:storage:user.
func StorageKey(name string) string {
	return fmt.Sprintf("%s:storage:%s", RedisNamespace, name)
}
