package mockbackend

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposely/internal/models"
)

// FilesPrefix задаёт путь, по которому раздаются сгенерированные PDF.
const FilesPrefix = "/files/"

// ProposalHandler обслуживает генерацию и сохранённые предложения.
type ProposalHandler struct {
	proposals *ProposalStore
	users     *UserStore
	publicURL string
}

// NewProposalHandler создаёт хэндлер. Пустой publicURL означает адрес из запроса.
func NewProposalHandler(proposals *ProposalStore, users *UserStore, publicURL string) *ProposalHandler {
	return &ProposalHandler{
		proposals: proposals,
		users:     users,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

type generateRequest struct {
	ClientName    string   `json:"client_name" binding:"required"`
	ProjectType   string   `json:"project_type" binding:"required"`
	CompanyName   string   `json:"company_name"`
	Template      string   `json:"template"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	ProjectBudget *float64 `json:"project_budget" binding:"omitempty,gte=0"`
	GeneratePDF   bool     `json:"generate_pdf"`
}

func (r generateRequest) model() models.GenerateProposalRequest {
	return models.GenerateProposalRequest{
		ClientName:    r.ClientName,
		ProjectType:   r.ProjectType,
		CompanyName:   r.CompanyName,
		Template:      r.Template,
		Title:         r.Title,
		Content:       r.Content,
		ProjectBudget: r.ProjectBudget,
	}
}

// Generate обрабатывает POST /generate: предложение со ссылкой на PDF.
func (h *ProposalHandler) Generate(c *gin.Context) {
	h.generate(c, true)
}

// Preview обрабатывает POST /api/proposals/preview: без PDF.
func (h *ProposalHandler) Preview(c *gin.Context) {
	h.generate(c, false)
}

func (h *ProposalHandler) generate(c *gin.Context, withPDF bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	resp := h.proposals.Generate(req.model(), h.baseURL(c), withPDF)
	if userID, ok := currentUserID(c); ok && withPDF {
		h.users.CountProposal(userID)
	}
	c.JSON(http.StatusOK, resp)
}

// GeneratePDF обрабатывает POST /api/generate-proposal и отдаёт PDF напрямую.
func (h *ProposalHandler) GeneratePDF(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="proposal.pdf"`)
	c.Data(http.StatusOK, "application/pdf", RenderPDF(req.model()))
}

// Create обрабатывает POST /api/proposals/create.
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	saved := h.proposals.Save(userID, models.SaveProposalRequest{
		GenerateProposalRequest: req.model(),
		GeneratePDF:             req.GeneratePDF,
	}, h.baseURL(c))
	c.JSON(http.StatusCreated, saved)
}

// List обрабатывает GET /api/proposals/list.
func (h *ProposalHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, h.proposals.List(userID))
}

// Delete обрабатывает DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	if err := h.proposals.Delete(userID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proposal deleted"})
}

// File обрабатывает GET /files/:name.
func (h *ProposalHandler) File(c *gin.Context) {
	data, ok := h.proposals.PDF(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *ProposalHandler) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
