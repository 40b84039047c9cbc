// Package guard decides whether navigation attempts are allowed for the
// current session, and remembers where an unauthenticated user was
// trying to go so login can drop them back there.
package guard

import (
	"errors"
	"sync"

	"github.com/watchparty/wpc/internal/session"
)

// LoginPath is the navigation path of the login view.
const LoginPath = "/login"

// DefaultLandingPath is where a login with no pending navigation lands.
const DefaultLandingPath = "/"

// State is the guard's view of the session lifecycle.
type State int

const (
	// StateUnknown means session restoration has not been attempted yet.
	// No navigation decision is possible in this state.
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// ErrSessionUnknown is returned by Authorize before Init has resolved
// the stored session. Callers should show a loading state and retry.
var ErrSessionUnknown = errors.New("session restoration not yet attempted")

// Guard is the navigation state machine. At most one pending navigation
// exists at a time; a new denial overwrites an old pending value.
type Guard struct {
	mu          sync.Mutex
	state       State
	pending     string
	hasPending  bool
	currentPath string
	unsubscribe func()
}

// New creates a guard in StateUnknown, watching store for session
// changes. Call Init before the first Authorize.
func New(store *session.Store) *Guard {
	g := &Guard{state: StateUnknown}
	g.unsubscribe = store.Subscribe(g.onSessionChange)
	return g
}

// Init resolves StateUnknown exactly once from the restored session.
// Calling it again is a no-op.
func (g *Guard) Init(restored session.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnknown {
		return
	}
	if restored.Valid() {
		g.state = StateAuthenticated
	} else {
		g.state = StateUnauthenticated
	}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Authorize decides whether a navigation to requestedPath may proceed.
// While unauthenticated it records requestedPath as the pending
// navigation (overwriting any previous one) and denies. Before Init has
// run it returns ErrSessionUnknown and no decision.
func (g *Guard) Authorize(requestedPath string) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateUnknown:
		return Deny, ErrSessionUnknown
	case StateUnauthenticated:
		g.pending = requestedPath
		g.hasPending = true
		return Deny, nil
	default:
		g.currentPath = requestedPath
		return Allow, nil
	}
}

// ResolveLoginTarget returns the path to navigate to after a successful
// login: the pending navigation if one was recorded, else the default
// landing path. Reading the pending value consumes it.
func (g *Guard) ResolveLoginTarget() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hasPending {
		target := g.pending
		g.pending = ""
		g.hasPending = false
		return target
	}
	return DefaultLandingPath
}

// Close detaches the guard from the session store.
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

// onSessionChange reacts to session store notifications. Losing the
// session mid-flight records the current path as pending, so a re-login
// returns the user to where they were.
func (g *Guard) onSessionChange(s session.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s.Valid() {
		if g.state != StateUnknown {
			g.state = StateAuthenticated
		}
		return
	}

	if g.state != StateAuthenticated {
		return
	}
	g.state = StateUnauthenticated
	if g.currentPath != "" && g.currentPath != LoginPath {
		g.pending = g.currentPath
		g.hasPending = true
	}
}
