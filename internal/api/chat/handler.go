package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pagechat/internal/domain"
	"pagechat/internal/service"
)

// Handler handles session and chat API requests
type Handler struct {
	chatService *service.ChatService
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService) *Handler {
	return &Handler{chatService: chatService}
}

// RegisterRoutes registers session and chat routes
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/init_session", h.InitSession)
	r.POST("/chat", h.Chat)
}

// InitSession creates a session grounded in the page at the requested URL
func (h *Handler) InitSession(c *gin.Context) {
	var req domain.InitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := h.chatService.InitSession(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error processing website: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, domain.InitSessionResponse{SessionID: sessionID})
}

// Chat answers one conversation turn for an existing session
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.chatService.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			// Retrieval and generation faults are both server-side; the body
			// keeps them distinguishable.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating response: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, domain.ChatResponse{Response: answer})
}
