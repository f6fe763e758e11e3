package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-account-service/pkg/response"
	"github.com/oksasatya/go-jwt-account-service/pkg/validation"
)

const (
	msgTokenNotFound   = "Token Not Found or Expired"
	msgAlreadyExists   = "Email Already Registered"
	msgUserNotFound    = "User Not Found"
	msgLoginFailed     = "User not found or not authenticated"
	msgUnauthenticated = "Not Found or Unauthorized"
	msgInternal        = "Internal Server Error"
)

// statusOf maps an account error to the envelope status and statusText.
func statusOf(err error) (int, any) {
	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Fields
	case errors.Is(err, account.ErrNotFoundOrExpired):
		return http.StatusBadRequest, msgTokenNotFound
	case errors.Is(err, account.ErrAlreadyExists):
		return http.StatusBadRequest, msgAlreadyExists
	case errors.Is(err, account.ErrNotFound):
		return http.StatusBadRequest, msgUserNotFound
	case errors.Is(err, account.ErrNotVerifiedOrNotFound), errors.Is(err, account.ErrBadCredentials):
		return http.StatusBadRequest, msgLoginFailed
	case errors.Is(err, account.ErrUnauthenticated):
		return http.StatusUnauthorized, msgUnauthenticated
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes the envelope for err; unexpected errors are logged with the request id.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status, text := statusOf(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.CtxRequestIDKey),
			"request":    middleware.RequestName(c),
		}).Error("request failed")
	}
	response.Error(c, status, text, middleware.RequestName(c))
}

// invalid writes a 400 envelope with field-level binding messages.
func invalid(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, validation.ToDetails(err), middleware.RequestName(c))
}
