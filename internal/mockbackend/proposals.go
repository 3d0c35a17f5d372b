package mockbackend

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposely/internal/models"
)

// ErrProposalNotFound возвращается, если у владельца нет такого предложения.
var ErrProposalNotFound = errors.New("proposal not found")

// ProposalStore хранит сохранённые предложения и выданные PDF в памяти.
type ProposalStore struct {
	mu    sync.RWMutex
	saved map[uuid.UUID][]models.SavedProposal
	pdfs  map[string][]byte
	now   func() time.Time
}

func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		saved: make(map[uuid.UUID][]models.SavedProposal),
		pdfs:  make(map[string][]byte),
		now:   time.Now,
	}
}

// Generate строит фиксированное фейковое предложение и регистрирует его PDF.
// pdfBaseURL задаёт абсолютный адрес сервера для ссылки на скачивание.
func (s *ProposalStore) Generate(req models.GenerateProposalRequest, pdfBaseURL string, withPDF bool) models.GenerateProposalResponse {
	id := uuid.NewString()
	resp := fakeProposal(id, req)

	if withPDF {
		filename := id + ".pdf"
		s.mu.Lock()
		s.pdfs[filename] = RenderPDF(req)
		s.mu.Unlock()

		resp.ProposalPDFFilename = filename
		resp.ProposalPDFDownloadURL = strings.TrimRight(pdfBaseURL, "/") + FilesPrefix + filename
	}
	return resp
}

// PDF возвращает содержимое ранее выданного файла.
func (s *ProposalStore) PDF(filename string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.pdfs[filename]
	return data, ok
}

// Save сохраняет метаданные предложения пользователя.
func (s *ProposalStore) Save(owner uuid.UUID, req models.SaveProposalRequest, pdfBaseURL string) models.SavedProposal {
	id := uuid.NewString()
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s for %s", req.ProjectType, req.ClientName)
	}

	saved := models.SavedProposal{
		ID:            id,
		Title:         title,
		ClientName:    req.ClientName,
		ProjectType:   req.ProjectType,
		CompanyName:   req.CompanyName,
		Template:      req.Template,
		ProjectBudget: req.ProjectBudget,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.GeneratePDF {
		filename := id + ".pdf"
		s.pdfs[filename] = RenderPDF(req.GenerateProposalRequest)
		saved.PDFURL = strings.TrimRight(pdfBaseURL, "/") + FilesPrefix + filename
	}
	s.saved[owner] = append(s.saved[owner], saved)
	return saved
}

// List возвращает предложения пользователя в порядке сохранения.
func (s *ProposalStore) List(owner uuid.UUID) []models.SavedProposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SavedProposal, len(s.saved[owner]))
	copy(out, s.saved[owner])
	return out
}

// Delete удаляет предложение пользователя.
func (s *ProposalStore) Delete(owner uuid.UUID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.saved[owner]
	for i := range list {
		if list[i].ID == id {
			s.saved[owner] = append(list[:i], list[i+1:]...)
			delete(s.pdfs, id+".pdf")
			return nil
		}
	}
	return ErrProposalNotFound
}

// fakeProposal строит фиксированную таблицу цен; реальный расчёт остаётся на стороне бэкенда.
func fakeProposal(id string, req models.GenerateProposalRequest) models.GenerateProposalResponse {
	table := []models.PricingItem{
		{Name: "Discovery & Design", Duration: "2 weeks", Price: 20000},
		{Name: "Development", Duration: "4 weeks", Price: 30000},
	}
	if req.ProjectBudget != nil && *req.ProjectBudget > 0 {
		table = []models.PricingItem{
			{Name: "Discovery & Design", Duration: "2 weeks", Price: *req.ProjectBudget * 0.4},
			{Name: "Development", Duration: "4 weeks", Price: *req.ProjectBudget * 0.6},
		}
	}

	var total float64
	for _, item := range table {
		total += item.Price
	}

	company := req.CompanyName
	if company == "" {
		company = "our team"
	}

	return models.GenerateProposalResponse{
		ID:           id,
		PricingTable: table,
		Total:        total,
		CoverLetter: fmt.Sprintf("Dear %s,\n\nThank you for considering %s for your %s project.",
			req.ClientName, company, strings.ToLower(req.ProjectType)),
		ContractText: fmt.Sprintf("This agreement is made between %s and %s for the delivery of a %s.",
			company, req.ClientName, strings.ToLower(req.ProjectType)),
	}
}

// RenderPDF собирает минимальный одностраничный PDF с заголовком предложения.
func RenderPDF(req models.GenerateProposalRequest) []byte {
	text := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).
		Replace(fmt.Sprintf("Proposal: %s for %s", req.ProjectType, req.ClientName))
	stream := fmt.Sprintf("BT /F1 18 Tf 72 720 Td (%s) Tj ET", text)

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
