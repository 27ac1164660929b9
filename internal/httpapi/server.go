// Package httpapi exposes the engine's commands and queries as JSON over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/idle-venues/internal/engine"
	"github.com/xtding233/idle-venues/internal/logger"
)

// MaxSummonsPerRequest bounds the count of a multi-summon.
const MaxSummonsPerRequest = 10

type Handler struct {
	eng *engine.Engine
	log logger.Logger
	now func() time.Time
}

func NewHandler(eng *engine.Engine, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{eng: eng, log: log.Named("http"), now: time.Now}
}

// Register mounts the /v1 routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/tick", h.postTick)
	v1.POST("/summon", h.postSummon)
	v1.POST("/assign", h.postAssign)
	v1.POST("/unassign", h.postUnassign)
	v1.POST("/upgrade", h.postUpgrade)
	v1.POST("/duplicate", h.postDuplicate)
	v1.POST("/ack", h.postAck)
	v1.GET("/state", h.getState)
	v1.GET("/progress", h.getProgress)
	v1.GET("/venues/:id/revenue", h.getVenueRevenue)
	v1.GET("/revenue", h.getRevenue)
	v1.GET("/synergies", h.getSynergies)
	v1.GET("/simulate", h.getSimulate)
}

// NewRouter builds the gin engine with logging, recovery, the API and /metrics.
// A nil registry omits /metrics.
func NewRouter(h *Handler, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(h.log), gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	h.Register(r)
	return r
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		kv := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(kv, "error", c.Errors.Last().Err)...)
			return
		}
		log.Debug("request", kv...)
	}
}
