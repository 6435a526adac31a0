package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
	"github.com/vouchportal/vouch-api/internal/services"
)

type InviteHandler struct {
	invites *services.InviteService
}

func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type inviteRequest struct {
	FromUserID uint64 `json:"from_user_id" binding:"required"`
	ToUsername string `json:"to_username" binding:"required"`
}

// SendInvite records an invite, subject to the weekly per-target cooldown
func (h *InviteHandler) SendInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := h.invites.SendInvite(req.FromUserID, req.ToUsername); err != nil {
		switch {
		case errors.Is(err, services.ErrInviteUsernameRequired):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrInviteCooldown):
			apierrors.TooManyRequests(c, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invite recorded"})
}
