package mockbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/proposely/internal/logger"
)

// ContextUserIDKey задаёт ключ userID в gin.Context.
const ContextUserIDKey = "userID"

// AuthMiddleware проверяет JWT access токен. Ответы в стиле FastAPI: {"detail": ...}.
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUser(c, tokens)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware запоминает пользователя, если токен валиден, и пропускает анонимов.
func OptionalAuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := bearerUser(c, tokens); ok {
			c.Set(ContextUserIDKey, userID)
		}
		c.Next()
	}
}

func bearerUser(c *gin.Context, tokens *TokenManager) (uuid.UUID, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return uuid.Nil, false
	}

	userID, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// currentUserID достаёт userID, выставленный AuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	return userID, ok
}

// UUIDValidator проверяет, что параметр пути является валидным UUID.
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"detail": "параметр " + paramName + " должен быть валидным UUID",
			})
			return
		}
		c.Next()
	}
}

// CORSMiddleware обрабатывает CORS заголовки и preflight запросы.
// Разрешает только origins из списка allowedOrigins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware ограничивает количество запросов с одного IP.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c, c.ClientIP())
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))

		if lctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}

// ErrorHandler превращает ошибки, добавленные через c.Error, в ответ {"detail": ...}.
// Неизвестные ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := classify(err)

		entry := logger.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("mock backend: ошибка запроса")
		} else {
			entry.Debug("mock backend: отклонённый запрос")
		}

		c.JSON(status, gin.H{"detail": message})
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, ErrUserExists):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, ErrProposalNotFound):
		return http.StatusNotFound, "Proposal not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
