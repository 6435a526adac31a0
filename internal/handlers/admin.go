package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/services"
)

// AdminHandler serves the admin-only configuration and correction endpoints.
// The admin check itself lives in middleware.RequireAdmin.
type AdminHandler struct {
	configs   *services.ConfigService
	directory *services.DirectoryService
}

func NewAdminHandler(configs *services.ConfigService, directory *services.DirectoryService) *AdminHandler {
	return &AdminHandler{configs: configs, directory: directory}
}

// GetConfig returns all admin config entries
func (h *AdminHandler) GetConfig(c *gin.Context) {
	entries, err := h.configs.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": entries})
}

type updateConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateConfig upserts a config entry
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := h.configs.Set(req.Key, req.Value); err != nil {
		apierrors.InternalError(c, "Failed to update config")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type correctRankRequest struct {
	UserID uint64    `json:"user_id" binding:"required"`
	Rank   rank.Rank `json:"rank" binding:"required"`
}

// CorrectRank is the administrative rank override. It always records a
// RankEvent, even when the rank is unchanged.
func (h *AdminHandler) CorrectRank(c *gin.Context) {
	var req correctRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := h.directory.UpdateRank(req.UserID, req.Rank); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRankKey):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
