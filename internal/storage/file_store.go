package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore хранит каждый ключ в отдельном файле каталога.
type FileStore struct {
	rootPath string
	mu       sync.Mutex
}

// NewFileStore создаёт каталог хранилища, если его нет.
func NewFileStore(rootPath string) (*FileStore, error) {
	if err := os.MkdirAll(rootPath, 0o700); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}
	return &FileStore{rootPath: rootPath}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось прочитать %s: %w", key, err)
	}
	return data, nil
}

// Set записывает значение через временный файл и rename.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	f, err := os.CreateTemp(s.rootPath, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	tempPath := f.Name()

	if _, err := f.Write(value); err != nil {
		f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка синхронизации файла: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.rootPath, sanitizeKey(key))
}

// sanitizeKey оставляет в имени файла только безопасные символы.
func sanitizeKey(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	safe = strings.TrimLeft(safe, ".")
	if safe == "" {
		safe = "_"
	}
	return safe
}
