package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tutorauth/core"
	"github.com/rs/zerolog"
)

// statusFor maps a domain error to an HTTP status and a client message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNoSession):
		return http.StatusUnauthorized, core.ErrNoSession.Error()
	case errors.Is(err, core.ErrInvalidSession):
		return http.StatusUnauthorized, core.ErrInvalidSession.Error()
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusForbidden, core.ErrUnauthorized.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, core.ErrNotFound.Error()
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrUnknownScheme):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// abortWithError writes the mapped error body and stops the handler chain.
// Session failures tell the client to sign in again; ownership failures do not.
func abortWithError(c *gin.Context, logger zerolog.Logger, err error) {
	status, msg := statusFor(err)

	event := logger.Debug()
	if status == http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Msg("request failed")

	c.AbortWithStatusJSON(status, gin.H{
		"error":          msg,
		"reauthenticate": core.NeedsReauthentication(err),
	})
}
