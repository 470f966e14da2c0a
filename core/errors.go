package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoSession           = errors.New("no session: connect and authenticate your wallet")
	ErrInvalidSession      = errors.New("session is invalid or expired")
	ErrUnauthorized        = errors.New("not authorized to modify this resource")
	ErrNotFound            = errors.New("resource not found")
	ErrUserRejected        = errors.New("signature request rejected")
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownScheme       = errors.New("unknown wallet scheme")
)

// AuthenticationError is returned when a wallet could not produce a session
// signature. Reason is safe to show to the user.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the user declined to sign
func (e *AuthenticationError) Rejected() bool {
	return errors.Is(e.Err, ErrUserRejected) || errors.Is(e.Err, context.Canceled)
}

// NeedsReauthentication reports whether err should send the user back to the
// wallet login prompt. Ownership failures never do.
func NeedsReauthentication(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrInvalidSession)
}
