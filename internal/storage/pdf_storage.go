package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// ErrNotPDF возвращается, если содержимое не является PDF по магическим байтам.
var ErrNotPDF = errors.New("storage: файл не является PDF")

// headerSize задаёт, сколько байт читается для определения типа.
const headerSize = 262

// PDFStorage сохраняет скачанные PDF в каталог загрузок.
type PDFStorage struct {
	rootPath    string
	maxPDFBytes int64
}

// NewPDFStorage создаёт каталог загрузок.
func NewPDFStorage(rootPath string, maxPDFMB int64) (*PDFStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PDFStorage{
		rootPath:    rootPath,
		maxPDFBytes: maxPDFMB * 1024 * 1024,
	}, nil
}

// Root возвращает каталог загрузок.
func (s *PDFStorage) Root() string {
	return s.rootPath
}

// Save проверяет тип, записывает файл и возвращает полный путь и размер.
func (s *PDFStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", 0, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	head = head[:n]
	if !IsPDF(head) {
		return "", 0, ErrNotPDF
	}

	targetPath := filepath.Join(s.rootPath, pdfFilename(name))
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxPDFBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxPDFBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxPDFBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return targetPath, written, nil
}

// Delete удаляет файл из каталога загрузок.
func (s *PDFStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, pdfFilename(name))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// IsPDF проверяет магические байты.
func IsPDF(head []byte) bool {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return false
	}
	return kind.MIME.Value == "application/pdf"
}

func pdfFilename(name string) string {
	safe := sanitizeFilename(name)
	if !strings.EqualFold(filepath.Ext(safe), ".pdf") {
		safe += ".pdf"
	}
	return safe
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" || name == "." {
		name = "proposal"
	}
	return name
}
