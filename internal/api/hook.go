package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// TurnRunner handles one hook turn. *graph.Runner implementations satisfy it.
type TurnRunner interface {
	Invoke(ctx context.Context, ev *model.HookEvent) *model.HookResponse
}

// Register mounts the hook, health and metrics endpoints.
func Register(r *gin.Engine, runner TurnRunner, gatherer prometheus.Gatherer) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.POST("/hook", HookHandler(runner))
}

// HookHandler decodes a turn event and always answers with a dialog action;
// only an undecodable body is rejected.
func HookHandler(runner TurnRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ev model.HookEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			logx.Warn().Err(err).Str("component", "api").Msg("rejecting undecodable hook event")
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		c.JSON(http.StatusOK, runner.Invoke(c.Request.Context(), &ev))
	}
}
