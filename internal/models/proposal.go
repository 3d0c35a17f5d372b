package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("download_url", isDownloadURL)
	return v
}

// isDownloadURL принимает путь от корня бэкенда или абсолютный http(s) адрес.
func isDownloadURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		_, err := url.ParseRequestURI(raw)
		return err == nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// PricingItem описывает строку таблицы стоимости.
// Amount присылается бэкендом не всегда; клиент его не пересчитывает.
type PricingItem struct {
	Name     string   `json:"name" validate:"required"`
	Duration string   `json:"duration"`
	Price    float64  `json:"price" validate:"gte=0"`
	Amount   *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
}

// GenerateProposalRequest содержит входные данные формы генерации.
type GenerateProposalRequest struct {
	ClientName    string   `json:"client_name"`
	ProjectType   string   `json:"project_type"`
	CompanyName   string   `json:"company_name,omitempty"`
	Template      string   `json:"template,omitempty"`
	Title         string   `json:"title,omitempty"`
	Content       string   `json:"content,omitempty"`
	ProjectBudget *float64 `json:"project_budget,omitempty"`
}

// SaveProposalRequest описывает тело запроса сохранения метаданных на сервере.
type SaveProposalRequest struct {
	GenerateProposalRequest
	GeneratePDF bool `json:"generate_pdf"`
}

// GenerateProposalResponse описывает ответ бэкенда на генерацию или предпросмотр.
type GenerateProposalResponse struct {
	ID                     string        `json:"id"`
	ProposalPDFFilename    string        `json:"proposal_pdf_filename,omitempty"`
	ProposalPDFDownloadURL string        `json:"proposal_pdf_download_url,omitempty" validate:"omitempty,download_url"`
	PricingTable           []PricingItem `json:"pricing_table" validate:"required,dive"`
	Total                  float64       `json:"total" validate:"gte=0"`
	CoverLetter            string        `json:"cover_letter" validate:"required"`
	ContractText           string        `json:"contract_text"`
}

// Validate проверяет, что ответ бэкенда соответствует ожидаемой схеме.
func (r *GenerateProposalResponse) Validate() error {
	return validate.Struct(r)
}

// Proposal описывает сгенерированное предложение, хранимое на стороне клиента.
// ID и CreatedAt назначаются один раз и больше не меняются.
type Proposal struct {
	GenerateProposalResponse
	ClientName  string    `json:"client_name"`
	ProjectType string    `json:"project_type"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedProposal описывает запись из списка предложений пользователя на сервере.
type SavedProposal struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title,omitempty"`
	ClientName    string   `json:"client_name"`
	ProjectType   string   `json:"project_type"`
	CompanyName   string   `json:"company_name,omitempty"`
	Template      string   `json:"template,omitempty"`
	ProjectBudget *float64 `json:"project_budget,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
	PDFURL        string   `json:"pdf_url,omitempty"`
}

// Validate проверяет запись списка.
func (p *SavedProposal) Validate() error {
	return validate.Struct(p)
}

// ProposalDraft хранит форму, сохранённую после сетевого сбоя генерации.
type ProposalDraft struct {
	Request GenerateProposalRequest `json:"request"`
	Error   string                  `json:"error,omitempty"`
	SavedAt time.Time               `json:"saved_at"`
}
