package service

import (
	"context"
	"net/http"

	"github.com/ignatzorin/proposely/internal/models"
)

// ProposalAPI описывает вызовы бэкенда, нужные ProposalService. Реализуется *api.Client.
type ProposalAPI interface {
	GenerateProposal(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error)
	PreviewProposal(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error)
	SaveProposal(ctx context.Context, req models.GenerateProposalRequest, generatePDF bool) (*models.SavedProposal, error)
	GenerateProposalPDF(ctx context.Context, req models.GenerateProposalRequest) (*http.Response, error)
	ListProposals(ctx context.Context) ([]models.SavedProposal, error)
	DeleteProposal(ctx context.Context, id string) error
	DownloadPDF(ctx context.Context, downloadURL string) (*http.Response, error)
}

// AuthAPI описывает вызовы бэкенда, нужные AuthService. Реализуется *api.Client.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Signup(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// SessionStore описывает хранение сессии. Реализуется *session.Manager.
type SessionStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	SaveUser(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*models.User, error)
}
