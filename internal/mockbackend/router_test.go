package mockbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposely/internal/config"
	"github.com/ignatzorin/proposely/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		AllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
}

func fakeRequest() models.GenerateProposalRequest {
	return models.GenerateProposalRequest{ClientName: "Acme Co", ProjectType: "Website"}
}

func setupRouter(t *testing.T) (*gin.Engine, *Backend) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	b := New(cfg)
	b.Users.cost = 4
	return SetupRouter(cfg, b, "http://mock.local"), b
}

func doJSON(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/signup", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	return resp.AccessToken
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"mock-1"}`, w.Body.String())
}

func TestRouter_SignupLoginMe(t *testing.T) {
	r, _ := setupRouter(t)
	signup(t, r)

	form := url.Values{"username": {"ann@example.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.Nil(t, auth.User)
	assert.Equal(t, "bearer", auth.TokenType)

	w = doJSON(r, http.MethodGet, "/api/auth/me", "", auth.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "free", user.Plan)
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	r, _ := setupRouter(t)
	signup(t, r)

	form := url.Values{"username": {"ann@example.com"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Incorrect email or password"}`, w.Body.String())
}

func TestRouter_SignupDuplicate(t *testing.T) {
	r, _ := setupRouter(t)
	signup(t, r)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", `{"email":"ann@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestRouter_MeRequiresToken(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/auth/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_GenerateAndDownload(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/generate", `{"client_name":"Acme Co","project_type":"Website"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.GenerateProposalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NoError(t, resp.Validate())
	assert.Equal(t, 50000.0, resp.Total)
	assert.Len(t, resp.PricingTable, 2)
	assert.Contains(t, resp.CoverLetter, "Acme Co")
	require.True(t, strings.HasPrefix(resp.ProposalPDFDownloadURL, "http://mock.local/files/"))

	path := strings.TrimPrefix(resp.ProposalPDFDownloadURL, "http://mock.local")
	w = doJSON(r, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestRouter_GenerateValidation(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/generate", `{"client_name":"Acme Co"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestRouter_PreviewHasNoPDF(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/proposals/preview", `{"client_name":"Acme Co","project_type":"Website","project_budget":1000}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GenerateProposalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ProposalPDFDownloadURL)
	assert.InDelta(t, 1000.0, resp.Total, 0.001)
}

func TestRouter_GeneratePDFRaw(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/generate-proposal", `{"client_name":"Acme Co","project_type":"Website"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestRouter_SavedProposals(t *testing.T) {
	r, _ := setupRouter(t)
	token := signup(t, r)

	w := doJSON(r, http.MethodGet, "/api/proposals/list", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/proposals/create", `{"client_name":"Acme Co","project_type":"Website","generate_pdf":true}`, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved models.SavedProposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "Website for Acme Co", saved.Title)
	assert.NotEmpty(t, saved.PDFURL)

	w = doJSON(r, http.MethodGet, "/api/proposals/list", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.SavedProposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	w = doJSON(r, http.MethodDelete, "/api/proposals/"+saved.ID, "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/proposals/"+saved.ID, "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Proposal not found"}`, w.Body.String())

	w = doJSON(r, http.MethodDelete, "/api/proposals/not-a-uuid", "", token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_GenerateCountsForUser(t *testing.T) {
	r, b := setupRouter(t)
	token := signup(t, r)

	w := doJSON(r, http.MethodPost, "/generate", `{"client_name":"Acme Co","project_type":"Website"}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	userID, err := b.Tokens.Parse(token)
	require.NoError(t, err)
	user, err := b.Users.Get(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, *user.ProposalsCount)
}

func TestRouter_CORS(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.RateLimitLimit = 2
	b := New(cfg)
	b.Users.cost = 4
	r := SetupRouter(cfg, b, "")

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = doJSON(r, http.MethodPost, "/api/auth/signup", `{"email":"bad"}`, "")
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
}
