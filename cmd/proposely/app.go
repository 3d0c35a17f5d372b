package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/api"
	"github.com/ignatzorin/proposely/internal/config"
	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
	"github.com/ignatzorin/proposely/internal/service"
	"github.com/ignatzorin/proposely/internal/session"
	"github.com/ignatzorin/proposely/internal/storage"
	"github.com/ignatzorin/proposely/internal/store"
)

var errNotLoggedIn = errors.New("вход не выполнен, используйте: proposely login")

// app держит зависимости, общие для всех команд.
type app struct {
	cfg       *config.Config
	kv        storage.KeyValueStore
	closeKV   func() error
	session   *session.Manager
	store     *store.Store
	client    *api.Client
	auth      *service.AuthService
	proposals *service.ProposalService
	settings  *service.SettingsService
}

func (a *app) open(ctx context.Context, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger.Init(logLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	kv, closeKV, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("main: хранилище %s: %w", cfg.StorageDriver, err)
	}
	a.kv = kv
	a.closeKV = closeKV

	st, err := store.New(ctx, store.NewKVPersister(kv))
	if err != nil {
		return err
	}
	a.store = st

	pdfs, err := storage.NewPDFStorage(cfg.DownloadPath, cfg.MaxPDFSizeMB)
	if err != nil {
		return err
	}

	a.session = session.NewManager(kv)
	a.client = api.NewClient(cfg.APIBaseURL, a.session,
		api.WithGeneratePath(cfg.GeneratePath),
		api.WithTimeouts(cfg.RequestTimeout, cfg.GenerationTimeout),
	)
	a.auth = service.NewAuthService(a.client, a.session, st)
	a.proposals = service.NewProposalService(a.client, st, a.session, kv, pdfs)
	a.settings = service.NewSettingsService(kv)

	logger.WithFields(logrus.Fields{
		"api":     cfg.APIBaseURL,
		"storage": cfg.StorageDriver,
	}).Debug("main: клиент готов")
	return nil
}

func (a *app) close() error {
	if a.closeKV == nil {
		return nil
	}

	m := api.GetMetrics()
	if m.Calls() > 0 {
		logger.WithFields(logrus.Fields{
			"calls":          m.Calls(),
			"failures":       m.Failures(),
			"timeouts":       m.Timeouts(),
			"avg_latency_ms": m.AverageLatency(),
			"error_rate":     m.ErrorRate(),
		}).Debug("main: статистика запросов")
	}
	return a.closeKV()
}

// requireSession возвращает ошибку, если пользователь не вошёл.
func (a *app) requireSession(ctx context.Context) error {
	ok, err := a.session.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errNotLoggedIn
	}
	return nil
}

// errorMessage форматирует ошибку для пользователя.
func errorMessage(err error) string {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if apperror.HasStatus(err) && !apperror.IsValidation(err) {
		return fmt.Sprintf("%s (HTTP %d)", appErr.Message, appErr.HTTPStatus)
	}
	return appErr.Message
}
