// Package cart реализует корзину покупателя - единственный источник
// правды о позициях активной сессии. Каждая мутация сквозным образом
// сохраняет список позиций в KV-хранилище, поэтому корзина переживает
// перезагрузку. Производные значения (subtotal, item count) никогда
// не сохраняются и пересчитываются при каждом чтении.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
)

const (
	keyPrefix     = "cart:"
	schemaVersion = 1
)

// envelope - сохраняемая форма корзины. Версия схемы позволяет явно
// отбрасывать данные устаревшей формы вместо попытки их декодировать.
type envelope struct {
	SchemaVersion int               `json:"schema_version"`
	Items         []models.CartLine `json:"items"`
}

// Store - корзина одной сессии. Экземпляр дешев: все состояние живет
// в KV-хранилище, поэтому Store можно создавать на каждый запрос.
type Store struct {
	kv  storage.KV
	key string
}

func NewStore(kv storage.KV, sessionID string) *Store {
	return &Store{
		kv:  kv,
		key: keyPrefix + sessionID,
	}
}

// AddItem добавляет товар в корзину. Если позиция для product.ID уже
// есть, ее количество увеличивается на 1, иначе создается новая позиция
// с количеством 1.
func (s *Store) AddItem(ctx context.Context, product models.Product) error {
	const fn = "cart.AddItem"

	lines, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %v", fn, err)
	}

	found := false

	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity++
			found = true

			break
		}
	}

	if !found {
		lines = append(lines, models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.ImageRef,
			Category:  product.Category,
			Quantity:  1,
		})
	}

	return s.persist(ctx, lines)
}

// RemoveItem удаляет позицию, если она есть. Отсутствие позиции
// не является ошибкой.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	const fn = "cart.RemoveItem"

	lines, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %v", fn, err)
	}

	kept := lines[:0]

	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	return s.persist(ctx, kept)
}

// UpdateQuantity выставляет количество позиции. Количество <= 0
// эквивалентно удалению позиции: позиций с нулевым количеством
// в корзине не бывает.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	const fn = "cart.UpdateQuantity"

	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	lines, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %v", fn, err)
	}

	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity

			break
		}
	}

	return s.persist(ctx, lines)
}

// Clear безусловно опустошает корзину.
func (s *Store) Clear(ctx context.Context) error {
	const fn = "cart.Clear"

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%s: %v", fn, err)
	}

	return nil
}

func (s *Store) Items(ctx context.Context) ([]models.CartLine, error) {
	return s.load(ctx)
}

func (s *Store) Subtotal(ctx context.Context) (float64, error) {
	lines, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	return models.Subtotal(lines), nil
}

func (s *Store) ItemCount(ctx context.Context) (int, error) {
	lines, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	return models.ItemCount(lines), nil
}

func (s *Store) load(ctx context.Context) ([]models.CartLine, error) {
	value, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't load cart: %v", err)
	}

	var env envelope

	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("can't unmarshal cart: %v", err)
	}

	// Неизвестная версия схемы - корзина отбрасывается, а не угадывается.
	if env.SchemaVersion != schemaVersion {
		return nil, nil
	}

	return env.Items, nil
}

func (s *Store) persist(ctx context.Context, lines []models.CartLine) error {
	value, err := json.Marshal(envelope{
		SchemaVersion: schemaVersion,
		Items:         lines,
	})
	if err != nil {
		return fmt.Errorf("can't marshal cart: %v", err)
	}

	if err := s.kv.Set(ctx, s.key, value); err != nil {
		return fmt.Errorf("can't persist cart: %v", err)
	}

	return nil
}
