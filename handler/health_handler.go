package handler

import (
	"context"
	"time"

	"quicknotes/dto"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store   string
	Checks  map[string]Pinger
	Started time.Time
	// PoolStats reports the Mongo connection pool, nil for other stores.
	PoolStats func() utils.MongoMetrics
}

func NewHealthHandler(store string, checks map[string]Pinger) *HealthHandler {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &HealthHandler{Store: store, Checks: checks, Started: time.Now()}
}

// Health reports dependency status; any failing check answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Store:     h.Store,
		Checks:    make(map[string]string, len(h.Checks)),
		Uptime:    time.Since(h.Started).Round(time.Second).String(),
		CheckedAt: time.Now().UTC(),
	}
	for name, p := range h.Checks {
		if err := p.Ping(ctx); err != nil {
			log.WithError(err).WithField("check", name).Warn("health check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	host := utils.GetHostStats(ctx)
	resp.Host = &host
	if h.PoolStats != nil {
		pool := h.PoolStats()
		resp.MongoPool = &pool
	}

	if resp.Status != "ok" {
		utils.ServiceUnavailable(c, "Service degraded", resp)
		return
	}
	utils.Success(c, resp)
}
