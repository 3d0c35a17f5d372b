package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/storage"
	"github.com/ignatzorin/proposely/internal/validation"
)

// SettingsKey задаёт ключ настроек компании.
const SettingsKey = "company_settings"

// SettingsService хранит реквизиты компании локально.
type SettingsService struct {
	kv storage.KeyValueStore
}

func NewSettingsService(kv storage.KeyValueStore) *SettingsService {
	return &SettingsService{kv: kv}
}

// Save проверяет и сохраняет настройки.
func (s *SettingsService) Save(ctx context.Context, settings models.CompanySettings) error {
	settings.CompanyName = strings.TrimSpace(settings.CompanyName)
	settings.CompanyEmail = strings.TrimSpace(settings.CompanyEmail)
	if err := validation.ValidateCompanySettings(settings); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings service: сериализация: %w", err)
	}
	if err := s.kv.Set(ctx, SettingsKey, data); err != nil {
		return fmt.Errorf("settings service: сохранение: %w", err)
	}
	return nil
}

// Load возвращает сохранённые настройки или nil.
func (s *SettingsService) Load(ctx context.Context) (*models.CompanySettings, error) {
	data, err := s.kv.Get(ctx, SettingsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings service: чтение: %w", err)
	}

	var settings models.CompanySettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("settings service: разбор: %w", err)
	}
	return &settings, nil
}
