package router

import (
	"io"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-account-service/config"
	"github.com/oksasatya/go-jwt-account-service/internal/container"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
)

func TestInitModulesRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	container.SetConfig(config.Load())
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager("secret", "test", time.Hour, 24*time.Hour))

	engine := gin.New()
	reg := NewRegistry(engine)
	deps := InitModules(reg)
	reg.RegisterAll()

	require.NotNil(t, deps.Auth)
	require.NotNil(t, deps.Sessions)
	require.Nil(t, deps.Sessions.Blocklist, "no redis configured")

	var got []string
	for _, r := range engine.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)
	require.Equal(t, []string{
		"GET /api/auth/logout",
		"GET /api/auth/me",
		"GET /api/debug/vars",
		"GET /api/health",
		"GET /api/metrics",
		"GET /reminder/:token",
		"GET /verify/:token",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/register",
		"POST /api/auth/reminder",
		"POST /api/auth/update",
		"POST /reminder/confirm",
	}, got)
}
