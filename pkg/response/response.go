package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON body of every API endpoint.
// StatusText is "OK" on success, a message or a field->message map on failure.
// Data is "" when there is nothing to return.
type Envelope struct {
	Status     int    `json:"status"`
	StatusText any    `json:"statusText"`
	Data       any    `json:"data"`
	Request    string `json:"request"`
}

// New builds an envelope without writing it.
func New(status int, statusText any, data any, request string) Envelope {
	if status == 0 {
		status = http.StatusOK
	}
	if data == nil {
		data = ""
	}
	return Envelope{Status: status, StatusText: statusText, Data: data, Request: request}
}

// Success writes a 200 envelope carrying data.
func Success(ctx *gin.Context, data any, request string) Envelope {
	resp := New(http.StatusOK, "OK", data, request)
	ctx.JSON(resp.Status, resp)
	return resp
}

// Error writes a failure envelope with an empty data field.
func Error(ctx *gin.Context, status int, statusText any, request string) Envelope {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := New(status, statusText, "", request)
	ctx.JSON(resp.Status, resp)
	return resp
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, statusText any, request string) {
	resp := New(status, statusText, "", request)
	ctx.AbortWithStatusJSON(resp.Status, resp)
}
