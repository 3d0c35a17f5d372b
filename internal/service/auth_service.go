package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
	"github.com/ignatzorin/proposely/internal/store"
	"github.com/ignatzorin/proposely/internal/validation"
)

// AuthService инкапсулирует вход, регистрацию и жизненный цикл сессии.
type AuthService struct {
	api     AuthAPI
	session SessionStore
	store   *store.Store
}

// NewAuthService создаёт сервис аутентификации. st может быть nil.
func NewAuthService(api AuthAPI, sess SessionStore, st *store.Store) *AuthService {
	return &AuthService{
		api:     api,
		session: sess,
		store:   st,
	}
}

// Login выполняет вход и сохраняет сессию.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		// Бэкенд не вернул профиль: запрашиваем его по свежему токену.
		if user, err = s.api.Me(ctx, resp.AccessToken); err != nil {
			logger.WithFields(logrus.Fields{"error": err}).Debug("auth service: профиль после входа недоступен")
			user = &models.User{Email: email, Plan: models.PlanFree}
		}
	}

	if err := s.session.Save(ctx, resp.AccessToken, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить сессию")
	}
	logger.WithFields(logrus.Fields{"email": user.Email}).Info("auth service: вход выполнен")
	return user, nil
}

// Signup регистрирует пользователя и сохраняет сессию.
// Если бэкенд не вернул профиль, сохраняется {email, name, plan: free}.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateSignup(name, email, password); err != nil {
		return nil, err
	}

	resp, err := s.api.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		user = &models.User{Email: email, Name: name, Plan: models.PlanFree}
	}

	if err := s.session.Save(ctx, resp.AccessToken, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить сессию")
	}
	logger.WithFields(logrus.Fields{"email": user.Email}).Info("auth service: регистрация выполнена")
	return user, nil
}

// Logout очищает сессию и локальные предложения.
func (s *AuthService) Logout(ctx context.Context) error {
	sessionErr := s.session.Clear(ctx)

	var storeErr error
	if s.store != nil {
		storeErr = s.store.Clear(ctx)
	}

	if err := errors.Join(sessionErr, storeErr); err != nil {
		return fmt.Errorf("auth service: выход: %w", err)
	}
	return nil
}

// RefreshUser обновляет профиль по сохранённому токену.
// Без токена возвращает nil. Если сервер отверг токен или прислал
// некорректный ответ, сессия очищается; при сетевом сбое остаётся.
func (s *AuthService) RefreshUser(ctx context.Context) (*models.User, error) {
	token, err := s.session.Token(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось прочитать сессию")
	}
	if token == "" {
		return nil, nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if !apperror.IsNetworkClass(err) && !apperror.IsCanceled(err) {
			if clearErr := s.session.Clear(ctx); clearErr != nil {
				logger.WithFields(logrus.Fields{"error": clearErr}).Warn("auth service: не удалось очистить сессию")
			}
		}
		return nil, err
	}

	if err := s.session.SaveUser(ctx, *user); err != nil {
		return user, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить профиль")
	}
	return user, nil
}

// CurrentUser возвращает сохранённый профиль без обращения к бэкенду.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.session.User(ctx)
}
