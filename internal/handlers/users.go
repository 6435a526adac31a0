package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vouchportal/vouch-api/internal/constants"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
	"github.com/vouchportal/vouch-api/internal/services"
	"github.com/vouchportal/vouch-api/internal/utils"
)

type UserHandler struct {
	directory *services.DirectoryService
}

func NewUserHandler(directory *services.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

type registerUserRequest struct {
	ID         uint64  `json:"id" binding:"required"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	ReferrerID *uint64 `json:"referrer_id"`
}

// RegisterUser records an interaction: it creates the user on first contact
// and refreshes last-active (and username) on repeat contact.
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	user, err := h.directory.GetOrCreate(services.GetOrCreateInput{
		ID:         req.ID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ReferrerID: req.ReferrerID,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserView(*user)})
}

// ListUsers returns users ordered by total vouches, paginated
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.directory.List(params.Limit, params.Offset)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": newUserViews(users),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// SearchUsers finds users by username or name substring
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		apierrors.BadRequest(c, "Query parameter q is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultSearchLimit)))
	if limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultSearchLimit
	}

	users, err := h.directory.Search(query, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to search users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": newUserViews(users)})
}
