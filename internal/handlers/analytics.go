package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vouchportal/vouch-api/internal/constants"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
	"github.com/vouchportal/vouch-api/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetAnalytics returns the full analytics summary
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	summary, err := h.analytics.GetSummary(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to compute analytics")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetActivity returns the recent community activity feed
func (h *AnalyticsHandler) GetActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultActivityLimit)))

	activity, err := h.analytics.RecentActivity(limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

// GetLeaderboard returns the default leaderboards from the summary
func (h *AnalyticsHandler) GetLeaderboard(c *gin.Context) {
	summary, err := h.analytics.GetSummary(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to compute leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"most_vouched": summary.MostVouched,
		"top_helpers":  summary.TopHelpers,
	})
}

// GetLeaderboardByType returns a typed leaderboard
func (h *AnalyticsHandler) GetLeaderboardByType(c *gin.Context) {
	boardType := c.Param("board_type")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultLeaderboardLimit)))

	board, err := h.analytics.GetLeaderboard(boardType, limit)
	if err != nil {
		if errors.Is(err, services.ErrUnknownBoard) {
			apierrors.BadRequest(c, err.Error())
		} else {
			apierrors.InternalError(c, "Failed to compute leaderboard")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": board, "board_type": boardType})
}

// GetReferralStats returns referral statistics for a user
func (h *AnalyticsHandler) GetReferralStats(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user id")
		return
	}

	stats, err := h.analytics.GetReferralStats(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch referral stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetViralSummary returns the growth snapshot
func (h *AnalyticsHandler) GetViralSummary(c *gin.Context) {
	summary, err := h.analytics.GetViralSummary()
	if err != nil {
		apierrors.InternalError(c, "Failed to compute viral summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

type shareRequest struct {
	UserID   uint64 `json:"user_id" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

// LogShare records a share-button click
func (h *AnalyticsHandler) LogShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	h.analytics.LogShare(req.UserID, req.Platform)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
