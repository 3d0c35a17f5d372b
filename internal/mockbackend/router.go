package mockbackend

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposely/internal/config"
)

// Backend хранит состояние mock бэкенда: пользователей, предложения и токены.
type Backend struct {
	Users     *UserStore
	Proposals *ProposalStore
	Tokens    *TokenManager
}

// New создаёт пустой бэкенд.
func New(cfg *config.Config) *Backend {
	return &Backend{
		Users:     NewUserStore(),
		Proposals: NewProposalStore(),
		Tokens:    NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL),
	}
}

// SetupRouter собирает gin.Engine с контрактом бэкенда генерации предложений.
// publicURL задаёт адрес для ссылок на PDF; пустой означает адрес из запроса.
func SetupRouter(cfg *config.Config, b *Backend, publicURL string) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authHandler := NewAuthHandler(b.Users, b.Tokens)
	proposalHandler := NewProposalHandler(b.Proposals, b.Users, publicURL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandler())
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", Health)
	r.GET(FilesPrefix+":name", proposalHandler.File)

	optional := OptionalAuthMiddleware(b.Tokens)
	r.POST("/generate", optional, proposalHandler.Generate)

	api := r.Group("/api")
	api.POST("/generate-proposal", optional, proposalHandler.GeneratePDF)

	authGroup := api.Group("/auth")
	authGroup.Use(RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/signup", authHandler.Signup)
	}
	api.GET("/auth/me", AuthMiddleware(b.Tokens), authHandler.Me)

	proposals := api.Group("/proposals")
	{
		proposals.POST("/preview", optional, proposalHandler.Preview)

		protected := proposals.Group("")
		protected.Use(AuthMiddleware(b.Tokens))
		protected.POST("/create", proposalHandler.Create)
		protected.GET("/list", proposalHandler.List)
		protected.DELETE("/:id", UUIDValidator("id"), proposalHandler.Delete)
	}

	return r
}
