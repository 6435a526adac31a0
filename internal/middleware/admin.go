package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/vouchportal/vouch-api/internal/errors"
)

// RequireAdmin checks the admin_id query parameter against the configured
// administrator ID. This is the only privileged check in the system.
func RequireAdmin(adminID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, err := strconv.ParseInt(c.Query("admin_id"), 10, 64)
		if err != nil || adminID == 0 || requester != adminID {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
