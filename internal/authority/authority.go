// Package authority maintains a single source of truth for "who is signed
// in and what can they do". It caches the current session, resolves the
// profile and role set for its identity against a remote Gateway, and
// answers synchronous capability checks. All remote failures fail closed:
// capability checks read as false rather than blocking or throwing.
package authority

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"worklane.org/internal/obs"
)

// Authority owns the published {session, profile, roles} triple. Construct
// one per application instance and hand it to consumers by reference; it
// has no package-level state.
type Authority struct {
	gw   Gateway
	logf func(format string, args ...any)

	mu          sync.RWMutex
	gen         uint64
	session     *Session
	profile     *Profile
	roles       map[string]struct{}
	initialized bool

	// onResolve is invoked after a resolution is applied or discarded.
	// Tests use it to await asynchronous completions.
	onResolve func(gen uint64, applied bool)
}

// Option configures an Authority.
type Option func(*Authority)

// WithLogger overrides the destination for resolution and sign-out errors.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(a *Authority) {
		if logf != nil {
			a.logf = logf
		}
	}
}

// New constructs an Authority bound to the given gateway. Call Initialize
// before relying on capability checks, then Run to track session events.
func New(gw Gateway, opts ...Option) *Authority {
	a := &Authority{
		gw:    gw,
		logf:  log.Printf,
		roles: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize restores the persisted session from the gateway and, if one
// exists, resolves its profile and roles before returning. A failed
// restore is treated as "no session", never as a fatal error. Until
// Initialize returns, capability checks answer false.
func (a *Authority) Initialize(ctx context.Context) {
	sess, err := a.gw.GetCurrentSession(ctx)
	if err != nil {
		a.logf("authority: restore session: %v", err)
		sess = nil
	}

	var gen uint64
	a.mu.Lock()
	a.gen++
	gen = a.gen
	a.session = copySession(sess)
	a.profile = nil
	a.roles = make(map[string]struct{})
	a.mu.Unlock()

	if sess != nil {
		a.resolve(ctx, gen, sess.Identity)
	}

	a.mu.Lock()
	a.initialized = true
	a.mu.Unlock()
}

// Run consumes session events from the gateway until ctx ends. Each
// sign-in or token refresh re-runs role resolution from scratch; the
// resolution runs asynchronously and only the most recently started one
// may publish (stale completions are discarded).
func (a *Authority) Run(ctx context.Context) {
	for evt := range a.gw.SubscribeSessionEvents(ctx) {
		a.applyEvent(ctx, evt)
	}
}

func (a *Authority) applyEvent(ctx context.Context, evt SessionEvent) {
	if evt.Kind == EventSignedOut || evt.Session == nil {
		a.clear()
		return
	}

	sess := evt.Session
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.session = copySession(sess)
	// Fail closed for the new identity until its resolution lands.
	a.profile = nil
	a.roles = make(map[string]struct{})
	a.mu.Unlock()

	go a.resolve(ctx, gen, sess.Identity)
}

// resolve derives {profile, role set} for the identity and publishes the
// result atomically, unless the authority has moved to a newer generation
// in the meantime.
func (a *Authority) resolve(ctx context.Context, gen uint64, identity Identity) {
	// Missing profile is non-fatal: fall back to a minimal profile
	// derived from the identity.
	profile := Profile{ID: identity.ID, Email: identity.Email}
	if p, err := a.gw.QueryProfile(ctx, identity.ID); err == nil {
		profile = p
	} else if !errors.Is(err, ErrNotFound) {
		a.logf("authority: query profile %s: %v", identity.ID, err)
	}

	roles := make(map[string]struct{})
	assignments, err := a.gw.QueryRoleAssignments(ctx, identity.ID)
	if err != nil {
		// Fail closed: publish an empty role set, let the next
		// session event retry.
		a.logf("authority: query roles %s: %v", identity.ID, err)
		obs.CountResolution("failed")
		assignments = nil
	}
	for _, ra := range assignments {
		name := strings.TrimSpace(ra.RoleName)
		if name == "" {
			continue
		}
		roles[name] = struct{}{}
	}

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		// Superseded by a newer session transition; discard silently.
		obs.CountResolution("discarded")
		a.notifyResolve(gen, false)
		return
	}
	a.profile = &profile
	a.roles = roles
	a.mu.Unlock()
	if err == nil {
		obs.CountResolution("applied")
	}
	a.notifyResolve(gen, true)
}

func (a *Authority) notifyResolve(gen uint64, applied bool) {
	if a.onResolve != nil {
		a.onResolve(gen, applied)
	}
}

// SignOut requests remote invalidation and clears local state regardless
// of the outcome, so the caller always fails safe to "signed out". It is
// also a cancellation point: any in-flight resolution is superseded.
func (a *Authority) SignOut(ctx context.Context) {
	a.clear()
	if err := a.gw.InvalidateSession(ctx); err != nil {
		a.logf("authority: invalidate session: %v", err)
	}
}

func (a *Authority) clear() {
	a.mu.Lock()
	a.gen++
	a.session = nil
	a.profile = nil
	a.roles = make(map[string]struct{})
	a.mu.Unlock()
}

// Session returns a copy of the current cached session, or nil when
// signed out. It never blocks once Initialize has completed.
func (a *Authority) Session() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copySession(a.session)
}

// Profile returns a copy of the resolved profile, or nil while unresolved.
func (a *Authority) Profile() *Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.profile == nil {
		return nil
	}
	p := *a.profile
	return &p
}

// Roles returns the published role names in sorted order.
func (a *Authority) Roles() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.roles))
	for name := range a.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Ready reports whether Initialize has completed. Callers should treat
// capability checks as "unknown" (false) until it has.
func (a *Authority) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.initialized
}

// HasRole reports whether the published role set contains name. It
// answers false, never an error, while roles are empty or unresolved.
func (a *Authority) HasRole(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.roles[name]
	return ok
}

// HasAnyRole reports whether any of the given names is granted.
func (a *Authority) HasAnyRole(names ...string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, name := range names {
		if _, ok := a.roles[name]; ok {
			return true
		}
	}
	return false
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
