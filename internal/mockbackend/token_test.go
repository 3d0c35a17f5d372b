package mockbackend

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID)
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Issue(uuid.New())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestUserStore(t *testing.T) {
	s := NewUserStore()
	s.cost = 4

	user, id, err := s.Register(" Ann ", "Ann@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "free", user.Plan)

	_, _, err = s.Register("", "ann@example.com", "secret2")
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := s.Authenticate("ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = s.Authenticate("ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s.CountProposal(id)
	profile, err := s.Get(id)
	require.NoError(t, err)
	require.NotNil(t, profile.ProposalsCount)
	assert.Equal(t, 1, *profile.ProposalsCount)
	assert.Equal(t, DefaultProposalsLimit, *profile.ProposalsLimit)
}

func TestRenderPDF(t *testing.T) {
	data := RenderPDF(fakeRequest())
	assert.True(t, len(data) > 100)
	assert.Equal(t, "%PDF-", string(data[:5]))
	assert.Contains(t, string(data), "%%EOF")
	assert.Contains(t, string(data), `Proposal: Website for Acme Co`)
}
