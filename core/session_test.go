package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionExpiry(t *testing.T) {
	s := NewSession("0xabc", "0x01", "msg", time.UnixMilli(1700000000000))

	assert.Equal(t, int64(1700000000000), s.Timestamp)
	assert.Equal(t, int64(1700000000000+86_400_000), s.ExpiresAt)
	assert.Equal(t, s.IssuedAt().Add(SessionTTL), s.Expiry())
}

func TestSessionExpired(t *testing.T) {
	s := NewSession("0xabc", "0x01", "msg", time.UnixMilli(1700000000000))

	assert.False(t, s.Expired(time.UnixMilli(1700000000000)))
	assert.False(t, s.Expired(time.UnixMilli(s.ExpiresAt)))
	assert.True(t, s.Expired(time.UnixMilli(s.ExpiresAt+1)))
}

func TestSessionCodec(t *testing.T) {
	s := NewSession("0xabc", "0xsig", "line one\nline two", time.UnixMilli(1700000000000))

	raw, err := EncodeSession(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"address": "0xabc",
		"signature": "0xsig",
		"message": "line one\nline two",
		"timestamp": 1700000000000,
		"expiresAt": 1700086400000
	}`, raw)

	decoded, err := DecodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	_, err = DecodeSession("{not json")
	assert.Error(t, err)
}

func TestAuthenticationError(t *testing.T) {
	rejected := &AuthenticationError{Reason: "request rejected in wallet", Err: ErrUserRejected}
	assert.True(t, rejected.Rejected())
	assert.ErrorIs(t, rejected, ErrUserRejected)

	canceled := &AuthenticationError{Reason: "canceled", Err: context.Canceled}
	assert.True(t, canceled.Rejected())

	missing := &AuthenticationError{Reason: "no wallet connected", Err: ErrProviderUnavailable}
	assert.False(t, missing.Rejected())
	assert.Contains(t, missing.Error(), "no wallet connected")

	var authErr *AuthenticationError
	assert.True(t, errors.As(error(missing), &authErr))
}

func TestNeedsReauthentication(t *testing.T) {
	assert.True(t, NeedsReauthentication(ErrNoSession))
	assert.True(t, NeedsReauthentication(ErrInvalidSession))
	assert.False(t, NeedsReauthentication(ErrUnauthorized))
	assert.False(t, NeedsReauthentication(ErrNotFound))
}
