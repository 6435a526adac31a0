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

type ProfileHandler struct {
	directory *services.DirectoryService
	ledger    *services.LedgerService
}

func NewProfileHandler(directory *services.DirectoryService, ledger *services.LedgerService) *ProfileHandler {
	return &ProfileHandler{directory: directory, ledger: ledger}
}

// GetProfile returns a user with their vouches and rank progress
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user id")
		return
	}

	user, err := h.directory.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
		} else {
			apierrors.InternalError(c, "")
		}
		return
	}

	received, err := h.ledger.VouchesFor(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	given, err := h.ledger.VouchesBy(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                newUserView(*user),
		"vouches_received":    received,
		"vouches_given":       given,
		"next_rank_threshold": rank.NextThreshold(user.TotalVouches),
		"progress_percentage": rank.Progress(user.TotalVouches),
	})
}

type updateProfileRequest struct {
	UserID            uint64  `json:"user_id" binding:"required"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// UpdateProfile applies a partial profile update
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	user, err := h.directory.UpdateProfile(req.UserID, services.UpdateProfileInput{
		Bio:               req.Bio,
		Location:          req.Location,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFieldsGiven):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": newUserView(*user)})
}
