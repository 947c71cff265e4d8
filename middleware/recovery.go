package middleware

import (
	"net/http"

	"quicknotes/metrics"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// http.ErrAbortHandler is the intended way to drop a connection
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.WithFields(log.Fields{
					"panic":      err,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString("request_id"),
				}).Error("recovered from panic")
				metrics.TrackError("panic")
				utils.InternalError(c, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
