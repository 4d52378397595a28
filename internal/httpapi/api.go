// Package httpapi is the HTTP surface of the worklane service: auth and
// session endpoints, profile and role reads, role administration, the
// employee directory and the engagement feed.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"worklane.org/internal/account"
	"worklane.org/internal/directory"
	"worklane.org/internal/engage"
	"worklane.org/internal/obs"
)

// ReadyProbe reports whether the service can take traffic.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	accounts  *account.Service
	directory *directory.Service
	engage    *engage.Service
}

// Option customises API construction.
type Option func(*API)

// WithDirectory wires the employee directory endpoints.
func WithDirectory(svc *directory.Service) Option {
	return func(a *API) { a.directory = svc }
}

// WithEngage wires the engagement feed endpoints.
func WithEngage(svc *engage.Service) Option {
	return func(a *API) { a.engage = svc }
}

// New builds the API with all routes registered.
func New(rp ReadyProbe, version string, accounts *account.Service, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		accounts:   accounts,
	}
	for _, opt := range opts {
		opt(a)
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth + session
	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleAuthRefresh)
	a.mux.HandleFunc("/v1/auth/session", a.handleAuthSession)
	a.mux.HandleFunc("/v1/auth/signout", a.handleAuthSignout)

	// profiles + role reads
	a.mux.HandleFunc("/v1/profiles/", a.handleProfileResource)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// role administration
	a.mux.HandleFunc("/v1/accounts", a.handleAccountsCollection)
	a.mux.HandleFunc("/v1/roles", a.handleRolesCollection)

	// employee directory
	a.mux.HandleFunc("/v1/employees", a.handleEmployeesCollection)
	a.mux.HandleFunc("/v1/employees/", a.handleEmployeeResource)

	// engagement feed
	a.mux.HandleFunc("/v1/engage/posts", a.handlePostsCollection)
	a.mux.HandleFunc("/v1/engage/posts/", a.handlePostResource)
	a.mux.HandleFunc("/v1/engage/stream", a.StreamPosts)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the API wrapped with request ids, authentication and
// metrics. Outer transport middleware (logging, CORS, rate limits) is
// layered by the caller.
func (a *API) Handler() http.Handler {
	return obs.Instrument(RequestID(a.withAuth(a.mux)))
}

// --- base handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "worklane-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "worklane-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
