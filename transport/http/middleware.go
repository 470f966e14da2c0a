package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/internal/metrics"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
)

const (
	// SchemeHeader names the wallet scheme of a bearer session
	SchemeHeader = "X-Wallet-Scheme"

	credentialsKey = "credentials"
)

// SessionMiddleware extracts presented session credentials into the request
// context. It does not verify them; handlers pass them to the Guard.
//
// A bearer token wins over cookies. Without one, the cookie of the scheme
// named by SchemeHeader is read, or else the first scheme cookie present.
// Requests without any session continue with no credentials.
func SessionMiddleware(tokens ports.Tokenizer, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, err := extractCredentials(c, tokens)
		if err != nil {
			abortWithError(c, logger, err)
			return
		}
		if creds != nil {
			c.Set(credentialsKey, creds)
		}
		c.Next()
	}
}

func extractCredentials(c *gin.Context, tokens ports.Tokenizer) (*core.Credentials, error) {
	schemeName := c.GetHeader(SchemeHeader)

	if auth := c.GetHeader("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, "Bearer ") {
			return nil, fmt.Errorf("%w: malformed authorization header", core.ErrInvalidSession)
		}
		scheme, err := core.SchemeByName(schemeName)
		if err != nil {
			return nil, err
		}
		session, err := tokens.TokenToSession(strings.TrimSpace(auth[len("Bearer "):]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidSession, err)
		}
		return &core.Credentials{Scheme: scheme, Session: session}, nil
	}

	schemes := core.Schemes()
	if schemeName != "" {
		scheme, err := core.SchemeByName(schemeName)
		if err != nil {
			return nil, err
		}
		schemes = []core.Scheme{scheme}
	}

	for _, scheme := range schemes {
		session, err := store.SessionFromRequest(c.Request, scheme)
		if errors.Is(err, core.ErrNoSession) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &core.Credentials{Scheme: scheme, Session: session}, nil
	}

	return nil, nil
}

// credentialsFrom returns the credentials set by SessionMiddleware, or nil
func credentialsFrom(c *gin.Context) *core.Credentials {
	v, ok := c.Get(credentialsKey)
	if !ok {
		return nil
	}
	creds, _ := v.(*core.Credentials)
	return creds
}

// RequestLogger logs every request and records its latency
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		m.ObserveRequest(c.Request.Method, route, status, elapsed)
		logger.Info().
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request")
	}
}
