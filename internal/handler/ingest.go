package handler

import (
	"errors"
	"net/http"
	"time"

	"roommatch/internal/model"
	"roommatch/internal/repository"
	"roommatch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pgvector/pgvector-go"
)

// IngestHandler handles collection ingestion and maintenance requests
type IngestHandler struct {
	store    repository.VectorStore
	embedder *service.Embedder
	maxBatch int
}

// NewIngestHandler creates a new ingestion handler
func NewIngestHandler(store repository.VectorStore, embedder *service.Embedder, maxBatch int) *IngestHandler {
	return &IngestHandler{
		store:    store,
		embedder: embedder,
		maxBatch: maxBatch,
	}
}

// Upsert handles POST /api/v1/collections/:name/records. Documents are
// embedded server-side so every record in a collection goes through the same
// embedding model.
func (h *IngestHandler) Upsert(c *gin.Context) {
	collection := c.Param("name")

	var req model.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No records provided"})
		return
	}
	if h.maxBatch > 0 && len(req.Records) > h.maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch too large", "max": h.maxBatch})
		return
	}

	texts := make([]string, len(req.Records))
	for i, r := range req.Records {
		texts[i] = r.Document
	}
	vectors, err := h.embedder.EmbedTexts(c.Request.Context(), texts)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Embedding failed: " + err.Error()})
		return
	}

	now := time.Now()
	records := make([]model.CandidateRecord, len(req.Records))
	for i, r := range req.Records {
		meta := r.Metadata
		if meta == nil {
			meta = model.JSONMap{}
		}
		records[i] = model.CandidateRecord{
			ID:        r.ID,
			Document:  r.Document,
			Metadata:  meta,
			Embedding: pgvector.NewVector(vectors[i]),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if err := h.store.Upsert(c.Request.Context(), collection, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upsert failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.UpsertResponse{Success: len(records)})
}

// Count handles GET /api/v1/collections/:name/count
func (h *IngestHandler) Count(c *gin.Context) {
	collection := c.Param("name")

	count, err := h.store.Count(c.Request.Context(), collection)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownCollection) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Count failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection, "count": count})
}

// Reset handles DELETE /api/v1/collections/:name
func (h *IngestHandler) Reset(c *gin.Context) {
	collection := c.Param("name")

	if err := h.store.Reset(c.Request.Context(), collection); err != nil {
		if errors.Is(err, repository.ErrUnknownCollection) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection, "reset": true})
}
