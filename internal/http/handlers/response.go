// Package handlers provides HTTP handler implementations for the public API.
//
// This file holds the shared response helpers. Every endpoint writes failures
// through fail(), so clients always receive the same envelope: a stable
// machine-readable code, a display-safe message, and the request correlation
// id when one is present, e.g.
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "lead_locked",
//	  "message": "lead is locked for this tenant"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oncampus/leadhub-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. Code values
// are the constants in errors.go; RequestID echoes the X-Request-ID header so
// client reports can be matched to server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with a structured error. Server-side failures
// (status >= 500) are additionally logged with the request-scoped logger;
// client errors are the caller's problem and stay out of the error log.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail() to the router for NoRoute/NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 with no body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
