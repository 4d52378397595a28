package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"worklane.org/internal/stream"
)

// HTTPGateway implements Gateway against the worklane HTTP API. It owns
// the credential exchange (SignIn/RefreshSession) and publishes the
// resulting transitions on its event stream, so an Authority running
// against it observes the same event flow a hosted auth service pushes.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	events  *stream.Stream[SessionEvent]

	mu      sync.Mutex
	session *Session
}

// NewHTTPGateway constructs a gateway rooted at baseURL, e.g.
// "http://localhost:8080".
func NewHTTPGateway(baseURL string, opts ...HTTPGatewayOption) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, errors.New("gateway base URL is required")
	}
	g := &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		events:  stream.New[SessionEvent](),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// HTTPGatewayOption customises gateway construction.
type HTTPGatewayOption func(*HTTPGateway)

// WithHTTPClient swaps the underlying HTTP client (tests, custom TLS).
func WithHTTPClient(client *http.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) { g.client = client }
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// SignIn exchanges credentials for a session, stores it and publishes a
// signed-in event. Invalid credentials surface as ErrUnauthorized.
func (g *HTTPGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := g.call(ctx, http.MethodPost, "/v1/auth/token", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := sessionFromToken(resp)
	g.setSession(session)
	g.events.Publish(SessionEvent{Kind: EventSignedIn, Session: session})
	return session, nil
}

// RefreshSession rotates the refresh token and publishes the refreshed
// session. The previous refresh token is dead after this call.
func (g *HTTPGateway) RefreshSession(ctx context.Context) (*Session, error) {
	current := g.currentSession()
	if current == nil || current.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token held", ErrUnauthorized)
	}
	var resp tokenResponse
	err := g.call(ctx, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": current.RefreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := sessionFromToken(resp)
	g.setSession(session)
	g.events.Publish(SessionEvent{Kind: EventTokenRefreshed, Session: session})
	return session, nil
}

// GetCurrentSession validates the held session against the server. A
// session the server no longer accepts reads as signed out, not as an
// error.
func (g *HTTPGateway) GetCurrentSession(ctx context.Context) (*Session, error) {
	current := g.currentSession()
	if current == nil {
		return nil, nil
	}
	var resp struct {
		User      Identity  `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	err := g.call(ctx, http.MethodGet, "/v1/auth/session", current.AccessToken, nil, &resp)
	if errors.Is(err, ErrUnauthorized) {
		g.setSession(nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// SubscribeSessionEvents delivers every transition this gateway
// originates until ctx ends.
func (g *HTTPGateway) SubscribeSessionEvents(ctx context.Context) <-chan SessionEvent {
	return g.events.Subscribe(ctx)
}

// QueryProfile loads the profile row for an identity id.
func (g *HTTPGateway) QueryProfile(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := g.call(ctx, http.MethodGet, "/v1/profiles/"+id, g.accessToken(), nil, &p)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// QueryRoleAssignments loads the role assignments for an identity id.
func (g *HTTPGateway) QueryRoleAssignments(ctx context.Context, id string) ([]RoleAssignment, error) {
	var resp struct {
		Assignments []RoleAssignment `json:"assignments"`
	}
	err := g.call(ctx, http.MethodGet, "/v1/users/"+id+"/roles", g.accessToken(), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

// InvalidateSession revokes the session remotely, drops the local copy
// and publishes a signed-out event. The local state is cleared even
// when the remote call fails.
func (g *HTTPGateway) InvalidateSession(ctx context.Context) error {
	token := g.accessToken()
	g.setSession(nil)
	g.events.Publish(SessionEvent{Kind: EventSignedOut})
	if token == "" {
		return nil
	}
	err := g.call(ctx, http.MethodPost, "/v1/auth/signout", token, nil, nil)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

func (g *HTTPGateway) currentSession() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	copied := *g.session
	return &copied
}

func (g *HTTPGateway) setSession(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
}

func (g *HTTPGateway) accessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return ""
	}
	return g.session.AccessToken
}

func sessionFromToken(resp tokenResponse) *Session {
	return &Session{
		Identity:     resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}
}

// call performs one JSON request/response exchange. 401/403 map to
// ErrUnauthorized, 404 to ErrNotFound, other non-2xx to a generic error
// carrying the server's message.
func (g *HTTPGateway) call(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= 300:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
