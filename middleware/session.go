package middleware

import (
	"context"
	"strings"

	"quicknotes/metrics"
	"quicknotes/model"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const DefaultSessionCookie = "sb-access-token"

type TokenVerifier interface {
	Verify(token string) (*model.Session, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type SessionOptions struct {
	Verifier    TokenVerifier
	Revocations RevocationChecker // optional
	CookieName  string
}

// SessionMiddleware resolves the access token of the request into a session
// on the request context. Requests without a usable token continue
// anonymously; the notes service rejects them.
func SessionMiddleware(opts SessionOptions) gin.HandlerFunc {
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, err := opts.Verifier.Verify(token)
		if err != nil {
			metrics.TrackAuthAttempt("failure", "token")
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("rejected access token")
			c.Next()
			return
		}

		if opts.Revocations != nil {
			revoked, err := opts.Revocations.IsRevoked(c.Request.Context(), token)
			if revoked || err != nil {
				metrics.TrackAuthAttempt("revoked", "token")
				c.Next()
				return
			}
		}

		session.DeviceInfo = utils.DescribeDevice(c.Request.UserAgent())
		c.Request = c.Request.WithContext(model.ContextWithSession(c.Request.Context(), session))
		c.Set("user_id", session.UserID)
		metrics.TrackAuthAttempt("success", "token")

		c.Next()
	}
}

// StaticSessionMiddleware signs every request in as the given session.
func StaticSessionMiddleware(session *model.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := *session
		s.DeviceInfo = utils.DescribeDevice(c.Request.UserAgent())
		c.Request = c.Request.WithContext(model.ContextWithSession(c.Request.Context(), &s))
		c.Set("user_id", s.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if token, err := c.Cookie(cookieName); err == nil {
		return token
	}
	return ""
}
