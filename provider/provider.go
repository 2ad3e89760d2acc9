package provider

import (
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// Decision is the outcome of a route protection check.
type Decision struct {
	Authenticated bool
	// RedirectURL is where an unauthenticated request should be sent.
	RedirectURL string
}

// Adapter presents one identity system behind a uniform surface. Requests
// carry whatever credential the system uses (a session cookie, an access JWT,
// proxy-injected headers); the adapter resolves it to a local user record.
type Adapter interface {
	// Name identifies the backing identity system.
	Name() auth.Provider

	// CurrentUser resolves the request's credential to a user. Returns
	// ErrNotAuthenticated when no valid credential is present.
	CurrentUser(r *http.Request) (*auth.User, error)

	// CurrentSession returns the request's session where the adapter manages
	// sessions itself. Adapters for stateless credentials return
	// ErrNoSession.
	CurrentSession(r *http.Request) (*session.Session, error)

	// SignOut terminates the request's credential. For external systems this
	// clears local state; the caller is expected to follow the returned
	// decision of ProtectRoute or the system's own logout flow.
	SignOut(w http.ResponseWriter, r *http.Request) error

	// ProtectRoute decides whether the request may proceed and where to send
	// it otherwise.
	ProtectRoute(r *http.Request) Decision
}
