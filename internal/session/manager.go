package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/storage"
)

// Ключи хранилища сессии.
const (
	TokenKey = "proposely_token"
	UserKey  = "proposely_user"
)

// Manager хранит bearer токен и последний известный профиль.
// Срок действия токена не отслеживается: его валидность определяет бэкенд.
type Manager struct {
	kv storage.KeyValueStore
}

func NewManager(kv storage.KeyValueStore) *Manager {
	return &Manager{kv: kv}
}

// Save записывает токен и профиль. nil профиль удаляет сохранённый.
func (m *Manager) Save(ctx context.Context, token string, user *models.User) error {
	if err := m.kv.Set(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("session: сохранение токена: %w", err)
	}

	if user == nil {
		if err := m.kv.Delete(ctx, UserKey); err != nil {
			return fmt.Errorf("session: удаление профиля: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: сериализация профиля: %w", err)
	}
	if err := m.kv.Set(ctx, UserKey, data); err != nil {
		return fmt.Errorf("session: сохранение профиля: %w", err)
	}
	return nil
}

// SaveUser обновляет только профиль.
func (m *Manager) SaveUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: сериализация профиля: %w", err)
	}
	if err := m.kv.Set(ctx, UserKey, data); err != nil {
		return fmt.Errorf("session: сохранение профиля: %w", err)
	}
	return nil
}

// Clear удаляет токен и профиль.
func (m *Manager) Clear(ctx context.Context) error {
	tokenErr := m.kv.Delete(ctx, TokenKey)
	userErr := m.kv.Delete(ctx, UserKey)
	if err := errors.Join(tokenErr, userErr); err != nil {
		return fmt.Errorf("session: очистка: %w", err)
	}
	return nil
}

// Token возвращает сохранённый токен или пустую строку.
func (m *Manager) Token(ctx context.Context) (string, error) {
	data, err := m.kv.Get(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: чтение токена: %w", err)
	}
	return string(data), nil
}

// User возвращает сохранённый профиль или nil.
// Повреждённая запись считается отсутствующей.
func (m *Manager) User(ctx context.Context) (*models.User, error) {
	data, err := m.kv.Get(ctx, UserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: чтение профиля: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// IsAuthenticated сообщает, что токен сохранён.
func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}
