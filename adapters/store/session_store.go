package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/layer-3/tutorauth/adapters/tokenizer"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
)

// DualStore keeps the current session of one scheme in a persistent store
// and mirrors it into a cookie so server-rendered requests can see it.
//
// Writes go to the persistent store first, then the cookie. Reads prefer the
// persistent store and fall back to the cookie. When the persistent copy is
// present and the cookie is missing, the cookie is rewritten from it: the
// persistent store wins on the client. With no cookie side configured the
// session lives in the persistent store only.
type DualStore struct {
	scheme     core.Scheme
	persistent ports.KeyValueStore
	cookies    ports.CookieStore
	codec      ports.Tokenizer
	logger     zerolog.Logger
}

// NewDualStore creates a session store for scheme. cookies may be nil.
func NewDualStore(scheme core.Scheme, persistent ports.KeyValueStore, cookies ports.CookieStore, logger zerolog.Logger) *DualStore {
	return &DualStore{
		scheme:     scheme,
		persistent: persistent,
		cookies:    cookies,
		codec:      tokenizer.NewCookieTokenizer(),
		logger:     logger.With().Str("component", "session_store").Str("scheme", scheme.Name).Logger(),
	}
}

var _ ports.SessionStore = (*DualStore)(nil)

// Get returns the stored session or core.ErrNoSession
func (d *DualStore) Get(ctx context.Context) (core.Session, error) {
	key := d.scheme.StorageKey

	raw, err := d.persistent.Get(ctx, key)
	switch {
	case err == nil:
		session, err := core.DecodeSession(raw)
		if err == nil {
			d.resyncCookie(ctx, session)
			return session, nil
		}
		d.logger.Warn().Err(err).Msg("discarding unreadable persisted session")
		if err := d.persistent.Delete(ctx, key); err != nil {
			return core.Session{}, fmt.Errorf("failed to discard session: %w", err)
		}
	case errors.Is(err, ports.ErrKeyNotFound):
	default:
		return core.Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	if d.cookies == nil {
		return core.Session{}, core.ErrNoSession
	}

	value, err := d.cookies.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return core.Session{}, core.ErrNoSession
		}
		return core.Session{}, fmt.Errorf("failed to read session cookie: %w", err)
	}

	session, err := d.codec.TokenToSession(value)
	if err != nil {
		d.logger.Warn().Err(err).Msg("discarding unreadable session cookie")
		_ = d.cookies.Delete(ctx, key)
		return core.Session{}, core.ErrNoSession
	}

	return session, nil
}

// Set overwrites the stored session in both locations. Expiry is not
// checked here; an expired session is written as given.
func (d *DualStore) Set(ctx context.Context, session core.Session) error {
	raw, err := core.EncodeSession(session)
	if err != nil {
		return err
	}

	if err := d.persistent.Set(ctx, d.scheme.StorageKey, raw, 0); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	if d.cookies == nil {
		return nil
	}
	if err := d.writeCookie(ctx, session); err != nil {
		// The persistent copy is authoritative; the next Get rewrites the cookie
		d.logger.Warn().Err(err).Msg("session cookie not written")
	}

	return nil
}

// Clear removes the session from both locations, attempting both even when
// one fails
func (d *DualStore) Clear(ctx context.Context) error {
	var errs []error

	if err := d.persistent.Delete(ctx, d.scheme.StorageKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear persisted session: %w", err))
	}
	if d.cookies != nil {
		if err := d.cookies.Delete(ctx, d.scheme.StorageKey); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear session cookie: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (d *DualStore) writeCookie(ctx context.Context, session core.Session) error {
	value, err := d.codec.SessionToToken(session)
	if err != nil {
		return err
	}
	return d.cookies.Set(ctx, d.scheme.StorageKey, value, session.Expiry())
}

func (d *DualStore) resyncCookie(ctx context.Context, session core.Session) {
	if d.cookies == nil {
		return
	}
	if _, err := d.cookies.Get(ctx, d.scheme.StorageKey); err == nil {
		return
	}
	if err := d.writeCookie(ctx, session); err != nil {
		d.logger.Warn().Err(err).Msg("session cookie not restored")
	}
}
