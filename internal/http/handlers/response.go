// Package handlers provides the HTTP handlers of the local geofence receiver.
//
// Every error leaves through fail, which writes the ErrorResponse envelope
// and logs server-side failures with the request-scoped logger. Service
// sentinels are mapped to statuses in one place (failFor) so each handler
// only decides what it calls, not how errors look on the wire.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "geofence_exists",
//	  "message": "geofence already armed for conversation: conv-1"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/http/middleware"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/services"
)

// ErrorResponse is the error envelope returned by all receiver endpoints.
type ErrorResponse struct {
	// Echo of X-Request-ID; correlates client errors with receiver logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"geofence not found"`
}

// fail aborts the request with the envelope. 5xx responses are logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for callers outside this package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFor maps a service error to its HTTP status and code. Unknown errors
// become 500 with fallbackCode; their text is not echoed.
func failFor(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrInvalidGeofence), errors.Is(err, services.ErrInvalidRequest):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrGeofenceNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "geofence not found")
	case errors.Is(err, services.ErrGeofenceExists):
		fail(c, http.StatusConflict, ErrCodeGeofenceExists, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, fallbackCode, "internal error")
	}
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
