package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// clearOnUnauthorized сбрасывает сессию, если бэкенд отклонил токен.
func clearOnUnauthorized(ctx context.Context, sess SessionStore, err error) {
	if sess == nil || !apperror.IsUnauthorized(err) {
		return
	}
	if clearErr := sess.Clear(ctx); clearErr != nil {
		logger.WithFields(logrus.Fields{"error": clearErr}).Warn("service: не удалось очистить сессию после 401")
		return
	}
	logger.WithFields(nil).Info("service: сессия очищена, требуется повторный вход")
}
