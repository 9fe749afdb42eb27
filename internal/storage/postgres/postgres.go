// Package postgres предоставляет архив завершенных заказов в PostgreSQL.
// Заказы попадают сюда асинхронно: витрина публикует событие в Kafka,
// а сервис-архиватор сохраняет его в таблицу completed_orders.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func New(cfg config.Postgres, log *slog.Logger) (*Storage, error) {
	const fn = "storage.postgres.New"
	log = log.With("fn", fn)

	log.Info("starting storage initialization...")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: can't open database: %v", fn, err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: can't connect to database: %v", fn, err)
	}

	return &Storage{db: db}, nil
}

// SaveOrder сохраняет завершенный заказ в архив. Повторная доставка
// того же события из Kafka не является ошибкой: конфликт по order_uid
// просто игнорируется.
func (s *Storage) SaveOrder(ctx context.Context, order *models.CompletedOrder) error {
	const fn = "storage.postgres.SaveOrder"

	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%s: can't marshal order: %v", fn, err)
	}

	query, args, err := sq.Insert("completed_orders").
		Columns(
			"order_uid",
			"status",
			"payment_method",
			"confirmation_reference",
			"subtotal",
			"tax",
			"total",
			"currency",
			"summary",
			"payload",
			"completed_at",
		).
		Values(
			order.OrderID,
			order.Status.String(),
			order.PaymentMethod.String(),
			order.ConfirmationReference,
			order.Subtotal,
			order.Tax,
			order.Total,
			order.Currency,
			order.Summary,
			payload,
			order.CompletedAt,
		).
		Suffix("ON CONFLICT (order_uid) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build query: %v", fn, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: can't insert order: %v", fn, err)
	}

	return nil
}

// GetOrder извлекает один заказ из архива по его order_uid.
func (s *Storage) GetOrder(ctx context.Context, orderUID string) (*models.CompletedOrder, error) {
	const fn = "storage.postgres.GetOrder"

	query, args, err := sq.Select("payload").
		From("completed_orders").
		Where(sq.Eq{"order_uid": orderUID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build query: %v", fn, err)
	}

	var payload []byte

	if err := s.db.GetContext(ctx, &payload, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoOrder
		}

		return nil, fmt.Errorf("%s: can't get order: %v", fn, err)
	}

	order := &models.CompletedOrder{}
	if err := json.Unmarshal(payload, order); err != nil {
		return nil, fmt.Errorf("%s: can't unmarshal order: %v", fn, err)
	}

	return order, nil
}

// GetOrders извлекает все заказы архива (используется для прогрева
// и ручной сверки; витрина этим методом не пользуется).
func (s *Storage) GetOrders(ctx context.Context) ([]*models.CompletedOrder, error) {
	const fn = "storage.postgres.GetOrders"

	query, _, err := sq.Select("payload").
		From("completed_orders").
		OrderBy("completed_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build query: %v", fn, err)
	}

	var payloads [][]byte

	if err := s.db.SelectContext(ctx, &payloads, query); err != nil {
		return nil, fmt.Errorf("%s: can't select orders: %v", fn, err)
	}

	orders := make([]*models.CompletedOrder, 0, len(payloads))

	for _, payload := range payloads {
		order := &models.CompletedOrder{}
		if err := json.Unmarshal(payload, order); err != nil {
			return nil, fmt.Errorf("%s: can't unmarshal order: %v", fn, err)
		}

		orders = append(orders, order)
	}

	return orders, nil
}
