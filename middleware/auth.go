package middleware

import (
	"quicknotes/services"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects requests that carry no valid session.
func AuthMiddleware(sessions services.SessionAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessions.CurrentSession(c.Request.Context())
		if err != nil || session == nil {
			utils.Unauthorized(c, "Missing or invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", session.UserID)
		c.Next()
	}
}
