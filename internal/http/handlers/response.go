// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints: the error
// envelope, the mapping from service errors to statuses and codes, and the
// success writers.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "profile_not_found",
//	  "message": "profile not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/emoto-backend/internal/http/middleware"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Field names the offending input on validation failures.
	Field string `json:"field,omitempty" example:"latitude"`
}

// fail aborts the request with a structured error. Server errors are logged
// on the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// errorMapping pairs a sentinel with its status and code.
type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrProfileNotFound, http.StatusNotFound, ErrCodeProfileNotFound},
	{services.ErrEmotoNotFound, http.StatusNotFound, ErrCodeEmotoNotFound},
	{services.ErrMessageNotFound, http.StatusNotFound, ErrCodeMessageNotFound},
	{services.ErrPairCodeNotFound, http.StatusNotFound, ErrCodePairCodeNotFound},
	{services.ErrEmotoUnavailable, http.StatusUnprocessableEntity, ErrCodeEmotoUnavailable},
	{services.ErrAlreadyPaired, http.StatusConflict, ErrCodeAlreadyPaired},
	{services.ErrNotPaired, http.StatusConflict, ErrCodeNotPaired},
	{services.ErrPairCodeExhausted, http.StatusServiceUnavailable, ErrCodePairCodeExhausted},
	{services.ErrUsernameTaken, http.StatusConflict, ErrCodeUsernameTaken},
	{repo.ErrDuplicate, http.StatusConflict, ErrCodeConflict},
}

// failErr translates a service error into a response. Unknown errors are
// 500s with a generic message; their detail only reaches the log.
func failErr(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		failWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: ve.Reason, Field: ve.Field})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			fail(c, m.status, m.code, m.target.Error())
			return
		}
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// notModified answers a conditional GET when etag matches If-None-Match.
// It always sets the ETag header.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
