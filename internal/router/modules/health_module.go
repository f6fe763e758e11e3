package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "github.com/oksasatya/go-jwt-account-service/internal/interface/http"
)

// HealthModule exposes dependency health, Prometheus metrics and runtime vars.
// GET /api/health, GET /api/metrics, GET /api/debug/vars
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule {
	return &HealthModule{Handler: h}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler.Health)
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
