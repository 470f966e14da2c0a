package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/layer-3/tutorauth/ports"
)

// JarCookieStore keeps cookies for one application origin in an
// http.CookieJar, so an http.Client sharing the jar presents them to
// server-rendered endpoints.
type JarCookieStore struct {
	jar    http.CookieJar
	origin *url.URL
	domain string
}

// NewJarCookieStore creates a cookie store scoped to origin
func NewJarCookieStore(jar http.CookieJar, origin string, domain string) (*JarCookieStore, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin must be absolute: %q", origin)
	}
	return &JarCookieStore{jar: jar, origin: u, domain: domain}, nil
}

var _ ports.CookieStore = (*JarCookieStore)(nil)

func (s *JarCookieStore) Get(ctx context.Context, name string) (string, error) {
	for _, c := range s.jar.Cookies(s.origin) {
		if c.Name == name {
			return c.Value, nil
		}
	}
	return "", ports.ErrKeyNotFound
}

func (s *JarCookieStore) Set(ctx context.Context, name, value string, expires time.Time) error {
	s.jar.SetCookies(s.origin, []*http.Cookie{NewCookie(name, value, expires, s.domain)})
	return nil
}

func (s *JarCookieStore) Delete(ctx context.Context, name string) error {
	s.jar.SetCookies(s.origin, []*http.Cookie{ExpiredCookie(name, s.domain)})
	return nil
}

// NewCookie builds a session cookie: whole-site path, lax same-site, and an
// explicit expiry. It is deliberately readable from scripts.
func NewCookie(name, value string, expires time.Time, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		Expires:  expires.UTC(),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that removes name from the client
func ExpiredCookie(name, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}
}
