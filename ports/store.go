package ports

import (
	"context"
	"errors"
	"time"

	"github.com/layer-3/tutorauth/core"
)

// ErrKeyNotFound is returned by key-value backends for missing keys
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is a durable string store. A ttl of zero means no expiry.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CookieStore holds cookies for the application origin
type CookieStore interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string, expires time.Time) error
	Delete(ctx context.Context, name string) error
}

// SessionStore persists the single current session of one scheme namespace
type SessionStore interface {
	// Get returns core.ErrNoSession when nothing is stored
	Get(ctx context.Context) (core.Session, error)
	// Set overwrites the stored session unconditionally
	Set(ctx context.Context, session core.Session) error
	// Clear removes the session from every location
	Clear(ctx context.Context) error
}
