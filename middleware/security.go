package middleware

import (
	"net/http"

	"quicknotes/utils"

	"github.com/gin-gonic/gin"
)

// RequestSizeLimiter rejects bodies larger than maxSize bytes.
func RequestSizeLimiter(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, &utils.Response{
				Status: http.StatusRequestEntityTooLarge,
				Error:  "Request body too large",
			})
			return
		}

		var w http.ResponseWriter = c.Writer
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, maxSize)

		c.Next()
	}
}
