package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
	"github.com/vouchportal/vouch-api/internal/rank"
	"github.com/vouchportal/vouch-api/internal/services"
)

type VouchHandler struct {
	ledger *services.LedgerService
}

func NewVouchHandler(ledger *services.LedgerService) *VouchHandler {
	return &VouchHandler{ledger: ledger}
}

type createVouchRequest struct {
	FromUserID uint64  `json:"from_user_id" binding:"required"`
	ToUserID   *uint64 `json:"to_user_id"`
	ToUsername string  `json:"to_username"`
	Message    string  `json:"message"`
}

// CreateVouch records a vouch for an existing user or a pending vouch for a
// username that has not joined yet
func (h *VouchHandler) CreateVouch(c *gin.Context) {
	var req createVouchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	result, err := h.ledger.CreateVouch(services.CreateVouchInput{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		ToUsername: req.ToUsername,
		Message:    req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidVouchTarget):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSelfVouch):
			apierrors.SelfVouch(c, err.Error())
		case errors.Is(err, services.ErrDuplicateVouch):
			apierrors.Conflict(c, apierrors.ErrCodeDuplicateVouch, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	if result.Pending {
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"vouch":   result.Vouch,
			"pending": true,
			"message": "Vouch recorded for @" + result.Vouch.ToUsername + ". They'll receive it when they join!",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"vouch":        result.Vouch,
		"pending":      false,
		"new_total":    result.NewTotal,
		"rank_changed": result.RankChanged,
		"old_rank":     result.OldRank,
		"new_rank":     result.NewRank,
		"rank_name":    rank.DisplayName(result.NewRank),
		"rank_emoji":   rank.Emoji(result.NewRank),
		"mutual":       result.Mutual,
	})
}

type updateVouchRequest struct {
	RequestingUserID uint64 `json:"requesting_user_id" binding:"required"`
	Message          string `json:"message"`
}

// UpdateVouch replaces a vouch message; only the original author may edit
func (h *VouchHandler) UpdateVouch(c *gin.Context) {
	vouchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid vouch id")
		return
	}

	var req updateVouchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	vouch, err := h.ledger.UpdateVouch(vouchID, req.RequestingUserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVouchNotFound):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrNotVouchOwner):
			apierrors.Forbidden(c, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "vouch": vouch})
}
