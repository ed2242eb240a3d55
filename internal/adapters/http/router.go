// Package http wires the gin router: the websocket endpoint plus a small
// read-only info API.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/adapters/ws"
	"github.com/wirenest/roomcast/internal/config"
	"github.com/wirenest/roomcast/internal/core"
	"github.com/wirenest/roomcast/internal/domain"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *ws.Controller, registry *core.Registry) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Server.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")

	// GET /api/rooms lists live rooms and their member counts.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": registry.Rooms()})
	})

	// GET /api/rooms/:id reports the member count for one room.
	api.GET("/rooms/:id", func(c *gin.Context) {
		id, err := domain.ValidateRoomID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		c.JSON(http.StatusOK, core.RoomInfo{ID: string(id), MemberCount: registry.RoomCount(id)})
	})

	r.GET("/ws/chat", func(c *gin.Context) {
		ctl.HandleChat(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
