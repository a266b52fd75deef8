package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

// Health pings the store and the cache concurrently. A failing store makes
// the service unavailable; a failing cache only degrades it.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus, cacheStatus := "ok", "disabled"
	var g errgroup.Group
	g.Go(func() error {
		if err := h.store.Ping(ctx); err != nil {
			dbStatus = "error"
			h.log.Error().Err(err).Msg("database ping failed")
		}
		return nil
	})
	if h.cache != nil {
		cacheStatus = "ok"
		g.Go(func() error {
			if err := h.cache.Ping(ctx).Err(); err != nil {
				cacheStatus = "error"
				h.log.Error().Err(err).Msg("redis ping failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	status, code := "ok", http.StatusOK
	switch {
	case dbStatus != "ok":
		status, code = "unavailable", http.StatusServiceUnavailable
	case cacheStatus == "error":
		status = "degraded"
	}

	env := ""
	if h.cfg != nil {
		env = h.cfg.Environment
	}
	c.JSON(code, healthResponse{
		Status:      status,
		Database:    dbStatus,
		Cache:       cacheStatus,
		Environment: env,
	})
}
