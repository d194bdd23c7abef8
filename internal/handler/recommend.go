package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"roommatch/internal/model"
	"roommatch/internal/service"

	"github.com/gin-gonic/gin"
)

// RecommendHandler handles recommendation HTTP requests
type RecommendHandler struct {
	matcher *service.Matcher
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(matcher *service.Matcher) *RecommendHandler {
	return &RecommendHandler{matcher: matcher}
}

// RecommendApartments handles POST /api/v1/recommend/apartments
func (h *RecommendHandler) RecommendApartments(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	rec, err := h.matcher.RecommendApartments(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// RecommendRoommates handles POST /api/v1/recommend/roommates
func (h *RecommendHandler) RecommendRoommates(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	rec, err := h.matcher.RecommendRoommates(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// RecommendApartmentsStream handles POST /api/v1/recommend/apartments/stream - SSE
func (h *RecommendHandler) RecommendApartmentsStream(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Transfer-Encoding", "chunked")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"query": req.Query})
	flusher.Flush()

	_, err := h.matcher.RecommendApartmentsStream(c.Request.Context(), req.Query, req.TopK, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// writeError maps pipeline errors to HTTP statuses. Empty input is the
// caller's fault; unparseable model output is an upstream failure.
func (h *RecommendHandler) writeError(c *gin.Context, err error) {
	var parseErr *service.ScoreParseError
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "raw_output": parseErr.Raw})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
