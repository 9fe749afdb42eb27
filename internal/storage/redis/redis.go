// Package redis предоставляет реализацию порта storage.KV поверх Redis.
// В нем хранятся корзины покупателей и записи о последних завершенных
// заказах; само содержимое ключей пакету безразлично.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Client является оберткой над стандартным клиентом `redis.Client`,
// что позволяет в будущем расширить его функциональность, не изменяя
// публичный API пакета.
type Client struct {
	*redis.Client
}

// New создает и настраивает новый клиент для подключения к Redis.
// Функция проверяет соединение с помощью команды PING и возвращает ошибку,
// если Redis недоступен.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	address := net.JoinHostPort(cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("can't ping redis: %v", err)
	}

	return &Client{client}, nil
}

// Get читает значение ключа. Если ключ не найден, возвращается доменная
// ошибка `storage.ErrNotFound`, а не `redis.Nil`, чтобы вызывающий код
// не зависел от конкретного хранилища.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	const fn = "storage.redis.Get"

	value, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: can't get key: %v", fn, err)
	}

	return value, nil
}

// Set сохраняет значение ключа без срока жизни (TTL=0): корзина живет
// до явной очистки, запись о заказе удаляется при первом чтении.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	const fn = "storage.redis.Set"

	if err := c.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: can't set key: %v", fn, err)
	}

	return nil
}

// Delete удаляет ключ. Удаление отсутствующего ключа не является ошибкой.
func (c *Client) Delete(ctx context.Context, key string) error {
	const fn = "storage.redis.Delete"

	if err := c.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: can't delete key: %v", fn, err)
	}

	return nil
}
