package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/session"
	"github.com/ignatzorin/proposely/internal/storage"
	"github.com/ignatzorin/proposely/internal/store"
)

// fakeAPI реализует ProposalAPI и AuthAPI для тестов.
type fakeAPI struct {
	mu sync.Mutex

	generateResp *models.GenerateProposalResponse
	generateErr  error
	generateReqs []models.GenerateProposalRequest

	saved   *models.SavedProposal
	saveErr error
	list    []models.SavedProposal
	listErr error
	deleted []string

	pdfBody      []byte
	pdfErr       error
	downloadURLs []string
	pdfReqs      []models.GenerateProposalRequest

	authResp  *models.AuthResponse
	authErr   error
	me        *models.User
	meErr     error
	meTokens  []string
	loginArgs []string
}

func (f *fakeAPI) GenerateProposal(_ context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateReqs = append(f.generateReqs, req)
	return f.generateResp, f.generateErr
}

func (f *fakeAPI) PreviewProposal(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error) {
	return f.GenerateProposal(ctx, req)
}

func (f *fakeAPI) SaveProposal(_ context.Context, _ models.GenerateProposalRequest, _ bool) (*models.SavedProposal, error) {
	return f.saved, f.saveErr
}

func (f *fakeAPI) GenerateProposalPDF(_ context.Context, req models.GenerateProposalRequest) (*http.Response, error) {
	f.mu.Lock()
	f.pdfReqs = append(f.pdfReqs, req)
	f.mu.Unlock()
	return f.pdfResponse()
}

func (f *fakeAPI) ListProposals(context.Context) ([]models.SavedProposal, error) {
	return f.list, f.listErr
}

func (f *fakeAPI) DeleteProposal(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.listErr
}

func (f *fakeAPI) DownloadPDF(_ context.Context, downloadURL string) (*http.Response, error) {
	f.mu.Lock()
	f.downloadURLs = append(f.downloadURLs, downloadURL)
	f.mu.Unlock()
	return f.pdfResponse()
}

func (f *fakeAPI) pdfResponse() (*http.Response, error) {
	if f.pdfErr != nil {
		return nil, f.pdfErr
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/pdf"}},
		Body:       io.NopCloser(bytes.NewReader(f.pdfBody)),
	}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.AuthResponse, error) {
	f.loginArgs = []string{email, password}
	return f.authResp, f.authErr
}

func (f *fakeAPI) Signup(_ context.Context, _, email, password string) (*models.AuthResponse, error) {
	f.loginArgs = []string{email, password}
	return f.authResp, f.authErr
}

func (f *fakeAPI) Me(_ context.Context, token string) (*models.User, error) {
	f.meTokens = append(f.meTokens, token)
	return f.me, f.meErr
}

type fixture struct {
	api      *fakeAPI
	kv       *storage.MemoryStore
	store    *store.Store
	session  *session.Manager
	pdfs     *storage.PDFStorage
	proposal *ProposalService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	kv := storage.NewMemoryStore()
	st, err := store.New(context.Background(), store.NewKVPersister(kv))
	require.NoError(t, err)

	pdfs, err := storage.NewPDFStorage(t.TempDir(), 1)
	require.NoError(t, err)

	api := &fakeAPI{}
	sess := session.NewManager(kv)
	return &fixture{
		api:      api,
		kv:       kv,
		store:    st,
		session:  sess,
		pdfs:     pdfs,
		proposal: NewProposalService(api, st, sess, kv, pdfs),
		auth:     NewAuthService(api, sess, st),
	}
}

func acmeRequest() models.GenerateProposalRequest {
	return models.GenerateProposalRequest{
		ClientName:  "Acme Co",
		ProjectType: "Website",
		CompanyName: "Studio",
	}
}

func acmeResponse() *models.GenerateProposalResponse {
	return &models.GenerateProposalResponse{
		ID:    "p-1",
		Total: 50000,
		PricingTable: []models.PricingItem{
			{Name: "Design", Duration: "2 weeks", Price: 20000},
			{Name: "Development", Duration: "4 weeks", Price: 30000},
		},
		CoverLetter:  "Dear Acme Co...",
		ContractText: "This agreement...",
	}
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
