package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
// CLI пишет логи в stderr, чтобы не смешивать их с выводом команд.
func Init(level string) {
	Log = logrus.New()
	Log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// SetOutput перенаправляет вывод логгера (используется в тестах).
func SetOutput(w io.Writer) {
	if Log != nil {
		Log.SetOutput(w)
	}
}

// WithFields возвращает запись с полями; безопасен до вызова Init.
func WithFields(fields logrus.Fields) *logrus.Entry {
	if Log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		return logrus.NewEntry(discard).WithFields(fields)
	}
	return Log.WithFields(fields)
}
