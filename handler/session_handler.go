package handler

import (
	"context"
	"time"

	"quicknotes/dto"
	"quicknotes/middleware"
	"quicknotes/services"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// revokedTokenTTL bounds the blacklist entry of a token without an expiry.
const revokedTokenTTL = 24 * time.Hour

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, until time.Time) error
}

type SessionHandler struct {
	Sessions   services.SessionAccessor
	Revoker    TokenRevoker // nil when revocation is disabled
	CookieName string
	Now        func() time.Time
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Sessions.CurrentSession(c.Request.Context())
	if err != nil || session == nil {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, dto.ToSessionResponse(session))
}

// Logout revokes the presented token until it would have expired and clears
// the session cookie.
func (h *SessionHandler) Logout(c *gin.Context) {
	session, err := h.Sessions.CurrentSession(c.Request.Context())
	if err != nil || session == nil {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if h.Revoker != nil && session.Token != "" {
		until := session.ExpiresAt
		if until.IsZero() {
			until = h.now().Add(revokedTokenTTL)
		}
		if err := h.Revoker.Revoke(c.Request.Context(), session.Token, until); err != nil {
			log.WithError(err).WithField("user_id", session.UserID).Error("failed to revoke token")
			utils.InternalError(c, "Failed to end session")
			return
		}
	}

	cookieName := h.CookieName
	if cookieName == "" {
		cookieName = middleware.DefaultSessionCookie
	}
	c.SetCookie(cookieName, "", -1, "/", "", true, true)

	utils.Success(c, gin.H{
		"message": "Successfully logged out",
	})
}

func (h *SessionHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
