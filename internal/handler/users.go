package handler

import (
	"net/http"
	"strconv"

	"roommatch/internal/model"
	"roommatch/internal/repository"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user identity requests
type UserHandler struct {
	users        *repository.UserStore
	recentLimit  int
	maxRecentCap int
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *repository.UserStore, recentLimit, maxRecentCap int) *UserHandler {
	return &UserHandler{
		users:        users,
		recentLimit:  recentLimit,
		maxRecentCap: maxRecentCap,
	}
}

// SaveUser handles POST /api/v1/users
func (h *UserHandler) SaveUser(c *gin.Context) {
	var req model.SaveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, err := h.users.SaveUser(c.Request.Context(), req.Name, req.StudentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uuid": id})
}

// RecentUsers handles GET /api/v1/users/recent
func (h *UserHandler) RecentUsers(c *gin.Context) {
	limit := h.recentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	if h.maxRecentCap > 0 && limit > h.maxRecentCap {
		limit = h.maxRecentCap
	}

	users, err := h.users.FetchRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
