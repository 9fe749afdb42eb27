// Package memory предоставляет реализацию порта storage.KV в памяти.
// Используется в тестах и при локальном запуске без Redis.
package memory

import (
	"context"
	"sync"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
)

type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *KV {
	return &KV{
		data: make(map[string][]byte),
	}
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	value, ok := k.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	// Копия защищает внутренний буфер от изменения вызывающим кодом.
	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (k *KV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	k.data[key] = stored

	return nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.data, key)

	return nil
}
