package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-jwt-account-service/internal/interface/http"
)

// AuthModule wires the public account endpoints.
// POST /api/auth/register, /api/auth/login, /api/auth/refresh, /api/auth/reminder
type AuthModule struct {
	Auth *handlers.AuthHandler
	User *handlers.UserHandler
}

func NewAuthModule(auth *handlers.AuthHandler, user *handlers.UserHandler) *AuthModule {
	return &AuthModule{Auth: auth, User: user}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Auth.Register)
	g.POST("/login", m.User.Login)
	// refresh reads the bearer token itself: expired tokens are still accepted there
	g.POST("/refresh", m.User.Refresh)
	g.POST("/reminder", m.Auth.Reminder)
}
