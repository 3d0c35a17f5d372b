package api

import (
	"context"
	"net/http"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

const (
	PathLogin  = "/api/auth/login"
	PathSignup = "/api/auth/signup"
	PathMe     = "/api/auth/me"
)

// Login выполняет вход в стиле OAuth2 password flow: форма с полем username.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	resp, err := c.Do(ctx, PathLogin, RequestOptions{
		Method:   http.MethodPost,
		Body:     models.LoginRequest{Username: email, Password: password},
		FormData: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeAuth(resp)
}

// Signup регистрирует пользователя.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	resp, err := c.Do(ctx, PathSignup, RequestOptions{
		Method: http.MethodPost,
		Body:   models.SignupRequest{Name: name, Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return decodeAuth(resp)
}

// Me возвращает профиль владельца токена. Пустой token означает токен из сессии.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	resp, err := c.Do(ctx, PathMe, RequestOptions{Method: http.MethodGet, Token: token})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, apperror.Malformed(err, "некорректный ответ сервера: профиль без email")
	}
	return &user, nil
}

func decodeAuth(resp *Response) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, apperror.ErrNoAccessToken
	}
	if out.User != nil {
		if err := out.User.Validate(); err != nil {
			return nil, apperror.Malformed(err, "некорректный ответ сервера: профиль без email")
		}
	}
	return &out, nil
}
