package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrNoOrder  = errors.New("no order found")
)

// KV - минимальный порт хранилища "ключ-значение", за которым живет
// состояние корзины и запись о последнем завершенном заказе.
// Реализации: Redis (боевая) и in-memory (тесты, локальный запуск).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
