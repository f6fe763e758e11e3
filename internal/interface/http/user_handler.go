package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/application"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/response"
)

// SessionService issues and revokes bearer tokens.
type SessionService interface {
	Login(ctx context.Context, email, password string) (application.SessionToken, error)
	Refresh(ctx context.Context, token string) (application.SessionToken, error)
	Logout(ctx context.Context, claims *helpers.Claims) error
}

// UserHandler serves session and profile endpoints.
type UserHandler struct {
	Sessions SessionService
	Accounts AccountService
	Logger   *logrus.Logger
}

func NewUserHandler(sessions SessionService, accounts AccountService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Sessions: sessions, Accounts: accounts, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	tok, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, tok, middleware.RequestName(c))
}

// Refresh POST /api/auth/refresh
// Expired tokens are accepted here as long as their refresh window is open.
func (h *UserHandler) Refresh(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		fail(c, h.Logger, account.ErrUnauthenticated)
		return
	}
	tok, err := h.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, tok, middleware.RequestName(c))
}

// Logout GET /api/auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, nil, middleware.RequestName(c))
}

// Me GET /api/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	view, err := h.Accounts.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, view, middleware.RequestName(c))
}

// updateRequest lists the editable profile fields. name, email and password are
// not part of it and are dropped by binding.
type updateRequest struct {
	NameKana    *string `json:"name_kana" binding:"omitempty,max=128,kana"`
	Birthday    *string `json:"birthday" binding:"omitempty,date"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female"`
	ZipCode     *string `json:"zip_cd" binding:"omitempty,zip_jp"`
	PrefID      *int64  `json:"pref_id" binding:"omitempty,min=1,max=47"`
	Address1    *string `json:"address1" binding:"omitempty,max=255"`
	Address2    *string `json:"address2" binding:"omitempty,max=255"`
	Address3    *string `json:"address3" binding:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,phone_jp"`
	Memo        *string `json:"memo" binding:"omitempty,max=65535"`
}

func (r updateRequest) patch() (account.ProfilePatch, error) {
	p := account.ProfilePatch{
		NameKana:    r.NameKana,
		Gender:      r.Gender,
		ZipCode:     r.ZipCode,
		PrefID:      r.PrefID,
		Address1:    r.Address1,
		Address2:    r.Address2,
		Address3:    r.Address3,
		PhoneNumber: r.PhoneNumber,
		Memo:        r.Memo,
	}
	if r.Birthday != nil {
		d, err := time.Parse(entity.DateLayout, *r.Birthday)
		if err != nil {
			return p, account.NewValidationError("birthday", "must be a date formatted as YYYY-MM-DD")
		}
		p.Birthday = &d
	}
	return p, nil
}

// Update POST /api/auth/update
func (h *UserHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid(c, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	view, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.UserID(c), p)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, view, middleware.RequestName(c))
}
