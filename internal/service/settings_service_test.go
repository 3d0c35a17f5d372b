package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
	"github.com/ignatzorin/proposely/internal/storage"
)

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(storage.NewMemoryStore())

	got, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = svc.Save(ctx, models.CompanySettings{CompanyName: " Studio ", CompanyEmail: "hi@studio.io"})
	require.NoError(t, err)

	got, err = svc.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Studio", got.CompanyName)
	assert.Equal(t, "hi@studio.io", got.CompanyEmail)
}

func TestSettingsService_Validation(t *testing.T) {
	svc := NewSettingsService(storage.NewMemoryStore())

	err := svc.Save(context.Background(), models.CompanySettings{CompanyName: "Studio", CompanyEmail: "nope"})
	assert.True(t, apperror.IsValidation(err))
}
