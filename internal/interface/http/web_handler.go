package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/validation"
)

//go:embed pages/*.html
var pagesFS embed.FS

const (
	pageVerify        = "verify.html"
	pageReminder      = "reminder.html"
	pageInputPassword = "input_password.html"

	resultSuccess = "success"
	resultExist   = "exist"
	resultError   = "error"
)

// WebHandler serves the browser pages reached from the links in account mails.
type WebHandler struct {
	Accounts AccountService
	Logger   *logrus.Logger
	pages    *template.Template
}

func NewWebHandler(accounts AccountService, logger *logrus.Logger) *WebHandler {
	return &WebHandler{
		Accounts: accounts,
		Logger:   logger,
		pages:    template.Must(template.ParseFS(pagesFS, "pages/*.html")),
	}
}

type resultPage struct {
	Result string
}

type passwordPage struct {
	Token  string
	Errors map[string]string
}

func (h *WebHandler) render(c *gin.Context, status int, name string, data any) {
	c.Render(status, render.HTML{Template: h.pages, Name: name, Data: data})
}

func (h *WebHandler) unexpected(c *gin.Context, err error) {
	h.Logger.WithError(err).WithField("request_id", c.GetString(middleware.CtxRequestIDKey)).Error("page request failed")
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// Verify GET /verify/:token
func (h *WebHandler) Verify(c *gin.Context) {
	err := h.Accounts.ConfirmRegistration(c.Request.Context(), c.Param("token"))
	switch {
	case err == nil:
		h.render(c, http.StatusOK, pageVerify, resultPage{Result: resultSuccess})
	case errors.Is(err, account.ErrAlreadyExists):
		h.render(c, http.StatusOK, pageVerify, resultPage{Result: resultExist})
	case errors.Is(err, account.ErrNotFoundOrExpired):
		h.render(c, http.StatusOK, pageVerify, resultPage{Result: resultError})
	default:
		h.unexpected(c, err)
	}
}

// PasswordForm GET /reminder/:token
func (h *WebHandler) PasswordForm(c *gin.Context) {
	token := c.Param("token")
	err := h.Accounts.CheckResetToken(c.Request.Context(), token)
	switch {
	case err == nil:
		h.render(c, http.StatusOK, pageInputPassword, passwordPage{Token: token})
	case errors.Is(err, account.ErrNotFoundOrExpired):
		h.render(c, http.StatusOK, pageReminder, resultPage{Result: resultError})
	default:
		h.unexpected(c, err)
	}
}

type resetConfirmForm struct {
	Token                string `form:"token" binding:"required"`
	Password             string `form:"password" binding:"required,pwd,max=64,pwbytes"`
	PasswordConfirmation string `form:"password_confirmation" binding:"required,eqfield=Password"`
}

// ConfirmReset POST /reminder/confirm
// Validation failures re-render the form with field messages.
func (h *WebHandler) ConfirmReset(c *gin.Context) {
	var form resetConfirmForm
	if err := c.ShouldBind(&form); err != nil {
		if form.Token == "" {
			h.render(c, http.StatusOK, pageReminder, resultPage{Result: resultError})
			return
		}
		h.Logger.WithField("token", helpers.MaskToken(form.Token)).Info("reset: invalid form")
		h.render(c, http.StatusOK, pageInputPassword, passwordPage{Token: form.Token, Errors: validation.ToDetails(err)})
		return
	}

	err := h.Accounts.ConfirmPasswordReset(c.Request.Context(), form.Token, form.Password)
	var verr *account.ValidationError
	switch {
	case err == nil:
		h.render(c, http.StatusOK, pageReminder, resultPage{Result: resultSuccess})
	case errors.As(err, &verr):
		h.render(c, http.StatusOK, pageInputPassword, passwordPage{Token: form.Token, Errors: verr.Fields})
	case errors.Is(err, account.ErrNotFoundOrExpired):
		h.render(c, http.StatusOK, pageReminder, resultPage{Result: resultError})
	default:
		h.unexpected(c, err)
	}
}
