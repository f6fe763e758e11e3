package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-jwt-account-service/internal/interface/http"
	"github.com/oksasatya/go-jwt-account-service/internal/interface/middleware"
)

// UserModule wires the endpoints that require a valid bearer token.
// GET /api/auth/logout, GET /api/auth/me, POST /api/auth/update
type UserModule struct {
	Handler  *handlers.UserHandler
	Sessions middleware.Authenticator
	Logger   *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, sessions middleware.Authenticator, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Sessions: sessions, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.Sessions, m.Logger))
	{
		auth.GET("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
		auth.POST("/update", m.Handler.Update)
	}
}
