package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-account-service/pkg/response"
)

// AccountService is the account orchestrator used by the JSON and browser handlers.
type AccountService interface {
	Register(ctx context.Context, in account.Registration) error
	ConfirmRegistration(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, userID string) (entity.UserView, error)
	UpdateProfile(ctx context.Context, userID string, p account.ProfilePatch) (entity.UserView, error)
}

// AuthHandler serves the public account endpoints: registration and the reminder request.
type AuthHandler struct {
	Accounts AccountService
	Logger   *logrus.Logger
}

func NewAuthHandler(accounts AccountService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Logger: logger}
}

type registerRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,pwd,max=64,pwbytes"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	err := h.Accounts.Register(c.Request.Context(), account.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, nil, middleware.RequestName(c))
}

type reminderRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// Reminder POST /api/auth/reminder
func (h *AuthHandler) Reminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, nil, middleware.RequestName(c))
}
