package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("storage: ключ не найден")

// KeyValueStore описывает долговременное хранилище клиентского состояния.
// Записи по разным ключам независимы и не имеют общей схемы.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete не считает отсутствие ключа ошибкой.
	Delete(ctx context.Context, key string) error
}
