package dto

import (
	"time"

	"quicknotes/model"
	"quicknotes/utils"
)

type SessionResponse struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	DeviceInfo string    `json:"device_info,omitempty"`
}

func ToSessionResponse(s *model.Session) SessionResponse {
	return SessionResponse{
		UserID:     s.UserID,
		Email:      s.Email,
		ExpiresAt:  s.ExpiresAt,
		DeviceInfo: s.DeviceInfo,
	}
}

type HealthResponse struct {
	Status    string              `json:"status"`
	Store     string              `json:"store"`
	Checks    map[string]string   `json:"checks"`
	Host      *utils.HostStats    `json:"host,omitempty"`
	MongoPool *utils.MongoMetrics `json:"mongo_pool,omitempty"`
	Uptime    string              `json:"uptime"`
	CheckedAt time.Time           `json:"checked_at"`
}
