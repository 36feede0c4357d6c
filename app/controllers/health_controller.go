package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthController struct {
	driver string
	ping   Pinger
}

// NewHealthController reports driver as the catalog backend. ping may be nil
// for backends with nothing to ping.
func NewHealthController(driver string, ping Pinger) *HealthController {
	return &HealthController{driver: driver, ping: ping}
}

func (c *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	if c.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Error("health check failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "Catalog store unavailable")
			return
		}
	}
	response.Success(w, map[string]string{"status": "ok", "driver": c.driver})
}
