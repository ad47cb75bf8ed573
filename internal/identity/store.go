package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
)

// ErrNotFound: ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Store: локальное key-value хранилище (аналог localStorage браузера).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// FileStore хранит значения как JSON-объект {"key": <value>} в одном файле.
// Значение может быть строкой с сериализованным JSON (как в localStorage) или объектом.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	// localStorage хранит строки: разворачиваем "{\"id\":...}" в байты JSON
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return []byte(str), nil
	}
	return raw, nil
}

// Set записывает значение атомарно (через временный файл). Используется CLI при логине и в тестах.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	// Как localStorage.setItem: значение хранится строкой
	encoded, err := json.Marshal(string(value))
	if err != nil {
		return fmt.Errorf("file store: encode value: %w", err)
	}
	entries[key] = encoded

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", s.path, err)
	}
	return entries, nil
}

// RedisStore читает значения из Redis по ключам cybermarket:storage:<key>.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, infra.StorageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return val, nil
}
