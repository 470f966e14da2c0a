package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/layer-3/tutorauth/adapters/tokenizer"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// apiClient talks to the tutorauth HTTP API on behalf of one scheme
type apiClient struct {
	base   string
	scheme core.Scheme
	http   *http.Client
	tokens ports.Tokenizer
}

func newAPIClient(base string, scheme core.Scheme, client *http.Client) *apiClient {
	return &apiClient{
		base:   strings.TrimRight(base, "/"),
		scheme: scheme,
		http:   client,
		tokens: tokenizer.NewBearerTokenizer(),
	}
}

// identity is the body of /auth/session and /auth/me responses
type identity struct {
	Address   string `json:"address"`
	Scheme    string `json:"scheme"`
	ExpiresAt int64  `json:"expiresAt"`
}

type apiError struct {
	Error          string `json:"error"`
	Reauthenticate bool   `json:"reauthenticate"`
}

// Establish registers the session with the server, which also sets the
// scheme cookie in the client's jar
func (c *apiClient) Establish(ctx context.Context, session core.Session) (identity, error) {
	var out identity
	path := "/auth/session?scheme=" + url.QueryEscape(c.scheme.Name)
	err := c.do(ctx, http.MethodPost, path, nil, session, &out)
	return out, err
}

func (c *apiClient) Me(ctx context.Context, session core.Session) (identity, error) {
	var out identity
	err := c.do(ctx, http.MethodGet, "/auth/me", &session, nil, &out)
	return out, err
}

func (c *apiClient) Logout(ctx context.Context) error {
	path := "/auth/logout?scheme=" + url.QueryEscape(c.scheme.Name)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *apiClient) ListCourses(ctx context.Context, owner string) ([]core.Course, error) {
	var out struct {
		Courses []core.Course `json:"courses"`
	}
	path := "/courses"
	if owner != "" {
		path += "?owner=" + url.QueryEscape(owner) + "&scheme=" + url.QueryEscape(c.scheme.Name)
	}
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out.Courses, err
}

func (c *apiClient) CreateCourse(ctx context.Context, session core.Session, in core.CourseInput) (core.Course, error) {
	var out core.Course
	err := c.do(ctx, http.MethodPost, "/courses", &session, in, &out)
	return out, err
}

func (c *apiClient) DeleteCourse(ctx context.Context, session core.Session, id string) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), &session, nil, nil)
}

func (c *apiClient) SaveProfile(ctx context.Context, session core.Session, in core.ProfileInput) (core.Profile, error) {
	var out core.Profile
	err := c.do(ctx, http.MethodPut, "/profiles/me", &session, in, &out)
	return out, err
}

func (c *apiClient) DeleteProfile(ctx context.Context, session core.Session) error {
	return c.do(ctx, http.MethodDelete, "/profiles/me", &session, nil, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, session *core.Session, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		token, err := c.tokens.SessionToToken(*session)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Wallet-Scheme", c.scheme.Name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps an API error body back onto the domain sentinels
func decodeError(resp *http.Response) error {
	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	switch {
	case body.Reauthenticate:
		return fmt.Errorf("%w: %s", core.ErrInvalidSession, body.Error)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", core.ErrUnauthorized, body.Error)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, body.Error)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", core.ErrInvalidInput, body.Error)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, body.Error)
	}
}
