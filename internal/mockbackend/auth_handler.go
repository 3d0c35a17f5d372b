package mockbackend

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/validation"
)

// AuthHandler обслуживает /api/auth/*.
type AuthHandler struct {
	users  *UserStore
	tokens *TokenManager
}

func NewAuthHandler(users *UserStore, tokens *TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Login обрабатывает POST /api/auth/login (форма OAuth2: username + password).
// Профиль в ответ не входит, клиент запрашивает его через /api/auth/me.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	userID, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.tokens.Issue(userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{AccessToken: token, TokenType: "bearer"})
}

// Signup обрабатывает POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	if err := validation.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	user, userID, err := h.users.Register(req.Name, req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.tokens.Issue(userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{AccessToken: token, TokenType: "bearer", User: &user})
}

// Me обрабатывает GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	user, err := h.users.Get(userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
