package api

import (
	"github.com/gin-gonic/gin"

	"pagechat/internal/api/chat"
	"pagechat/internal/api/middleware"
	"pagechat/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins     []string
	RateLimitEnabled bool
	RequestsPerHour  int
}

// SetupRouter sets up the Gin router
func SetupRouter(chatService *service.ChatService, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.CORS(cfg.AllowOrigins))
	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimit(cfg.RequestsPerHour))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	chatHandler := chat.NewHandler(chatService)
	chatHandler.RegisterRoutes(r)

	return r
}
