package handler

import (
	"errors"
	"net/http"

	"stockscope/internal/provider"
	"stockscope/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// statusFor maps service and provider errors onto HTTP statuses.
func statusFor(err error) int {
	if kind, ok := provider.KindOf(err); ok {
		switch kind {
		case provider.KindRateLimited:
			return http.StatusTooManyRequests
		case provider.KindUpstream:
			return http.StatusBadRequest
		case provider.KindUnexpectedShape:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidParameter),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyWatched):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotWatched):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, span trace.Span, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
