package mockbackend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposely/internal/models"
)

// Version возвращается mock бэкендом в ответе /health.
const Version = "mock-1"

// Health обрабатывает GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{Status: "ok", Version: Version})
}
