package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

func TestAuthService_LoginSavesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.authResp = &models.AuthResponse{
		AccessToken: "tok",
		User:        &models.User{Email: "a@b.com", Name: "Ann", Plan: "pro"},
	}

	user, err := f.auth.Login(ctx, "  a@b.com ", "x")
	require.NoError(t, err)
	assert.Equal(t, "pro", user.Plan)
	assert.Equal(t, []string{"a@b.com", "x"}, f.api.loginArgs)
	assert.Empty(t, f.api.meTokens)

	token, err := f.session.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	stored, err := f.auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ann", stored.Name)
}

func TestAuthService_LoginFetchesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.authResp = &models.AuthResponse{AccessToken: "tok"}
	f.api.me = &models.User{Email: "a@b.com", Plan: "free"}

	user, err := f.auth.Login(ctx, "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, []string{"tok"}, f.api.meTokens)
}

func TestAuthService_LoginProfileFallback(t *testing.T) {
	f := newFixture(t)
	f.api.authResp = &models.AuthResponse{AccessToken: "tok"}
	f.api.meErr = apperror.FromStatus(500, "boom")

	user, err := f.auth.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, &models.User{Email: "a@b.com", Plan: models.PlanFree}, user)
}

func TestAuthService_LoginRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.authErr = apperror.FromStatus(401, "Incorrect email or password")

	_, err := f.auth.Login(ctx, "a@b.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", apperror.Message(err))

	token, err := f.session.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuthService_LoginValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), "not-an-email", "x")
	assert.True(t, apperror.IsValidation(err))
	assert.Nil(t, f.api.loginArgs)
}

func TestAuthService_SignupFallbackUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.authResp = &models.AuthResponse{AccessToken: "tok"}

	user, err := f.auth.Signup(ctx, "Ann", "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, &models.User{Email: "a@b.com", Name: "Ann", Plan: models.PlanFree}, user)

	stored, err := f.session.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestAuthService_SignupShortPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Signup(context.Background(), "Ann", "a@b.com", "12345")
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_LogoutClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.Save(ctx, "tok", &models.User{Email: "a@b.com"}))
	f.api.generateResp = acmeResponse()
	_, err := f.proposal.Generate(ctx, acmeRequest())
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx))

	token, err := f.session.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, 0, f.store.Len())
}

func TestAuthService_RefreshUser(t *testing.T) {
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.auth.RefreshUser(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Empty(t, f.api.meTokens)
	})

	t.Run("updates profile", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.Save(ctx, "tok", &models.User{Email: "a@b.com", Plan: "free"}))
		f.api.me = &models.User{Email: "a@b.com", Plan: "pro"}

		user, err := f.auth.RefreshUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "pro", user.Plan)

		stored, err := f.session.User(ctx)
		require.NoError(t, err)
		assert.Equal(t, "pro", stored.Plan)
	})

	tests := []struct {
		name      string
		err       error
		wantToken string
	}{
		{name: "rejected token", err: apperror.FromStatus(401, "expired"), wantToken: ""},
		{name: "malformed profile", err: apperror.Malformed(errors.New("bad"), "bad"), wantToken: ""},
		{name: "timeout keeps session", err: apperror.Timeout(nil), wantToken: "tok"},
		{name: "network failure keeps session", err: apperror.Wrap(errors.New("dial"), apperror.ErrCodeRequestFailed, "offline"), wantToken: "tok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.session.Save(ctx, "tok", nil))
			f.api.meErr = tt.err

			_, err := f.auth.RefreshUser(ctx)
			require.Error(t, err)

			token, err := f.session.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
