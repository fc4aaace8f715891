// In file: cmd/chatbot/handler.go
package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dileep-u-k/genai-chatbot/internal/auth"
	"github.com/dileep-u-k/genai-chatbot/internal/chat"
	"github.com/dileep-u-k/genai-chatbot/internal/llm"
	"github.com/dileep-u-k/genai-chatbot/internal/store"
)

// ChatHandler is the thin presentation shell over the orchestrator. It owns
// request parsing, authentication, and status codes, nothing else. All
// state semantics live in internal/chat.
type ChatHandler struct {
	service  *chat.Service
	verifier auth.Verifier
}

func NewChatHandler(service *chat.Service, verifier auth.Verifier) *ChatHandler {
	return &ChatHandler{service: service, verifier: verifier}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Role        string           `json:"role"`
	Text        string           `json:"text"`
	Label       string           `json:"label"`
	Timestamp   time.Time        `json:"timestamp"`
	CacheStatus chat.CacheStatus `json:"cache_status"`
	LatencyMS   int64            `json:"latency_ms"`
}

type loginResponse struct {
	User string `json:"user"`
}

const identityKey = "identity"

// RequireUser authenticates every request on the group with HTTP basic
// credentials, resolved through the injected Verifier. The canonical
// identity lands in the context; handlers never look at raw credentials.
func (h *ChatHandler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, secret, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="chatbot"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "credentials required"})
			return
		}
		identity, ok := h.verifier.Authenticate(username, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// HandleLogin lets the UI validate credentials up front and learn the
// canonical identity it will be partitioned under.
func (h *ChatHandler) HandleLogin(c *gin.Context) {
	c.JSON(http.StatusOK, loginResponse{User: c.GetString(identityKey)})
}

// HandleAsk runs one question through the orchestrator.
func (h *ChatHandler) HandleAsk(c *gin.Context) {
	startTime := time.Now()
	user := c.GetString(identityKey)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	log.Printf("--- New Question (User: %s, Prompt: '%.30s...') ---", user, req.Question)

	result, err := h.service.Ask(c.Request.Context(), user, req.Question)
	if err != nil {
		var genErr *llm.GenerationError
		switch {
		case errors.Is(err, chat.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question is empty, please ask something"})
		case errors.As(err, &genErr):
			log.Printf("❌ Generation failed for %s: %v", user, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "the model could not answer, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Role:        result.Role,
		Text:        result.Text,
		Label:       result.Label,
		Timestamp:   result.Timestamp,
		CacheStatus: result.CacheStatus,
		LatencyMS:   time.Since(startTime).Milliseconds(),
	})
}

// HandleHistory returns the user's recent turns, newest first.
func (h *ChatHandler) HandleHistory(c *gin.Context) {
	user := c.GetString(identityKey)
	limit := store.RecentLimit
	if raw, ok := c.GetQuery("limit"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, gin.H{"records": h.service.History(c.Request.Context(), user, limit)})
}

// HandleClearHistory deletes the user's entire log.
func (h *ChatHandler) HandleClearHistory(c *gin.Context) {
	user := c.GetString(identityKey)
	if err := h.service.ClearHistory(c.Request.Context(), user); err != nil {
		log.Printf("❌ Failed to clear history for %s: %v", user, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store is unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
