package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-jwt-account-service/internal/interface/http"
)

// WebModule serves the pages linked from account mails. Registered on the engine root.
type WebModule struct {
	Handler *handlers.WebHandler
}

func NewWebModule(h *handlers.WebHandler) *WebModule {
	return &WebModule{Handler: h}
}

func (m *WebModule) Register(rg *gin.RouterGroup) {
	rg.GET("/verify/:token", m.Handler.Verify)
	rg.GET("/reminder/:token", m.Handler.PasswordForm)
	rg.POST("/reminder/confirm", m.Handler.ConfirmReset)
}
