package middleware

import "github.com/gin-gonic/gin"

// CacheControlMiddleware marks responses cacheable for the given seconds.
func CacheControlMiddleware(duration string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age="+duration)
		c.Next()
	}
}

// NoStoreMiddleware keeps per-user responses out of shared caches.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
