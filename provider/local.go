package provider

import (
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/cookie"
	"github.com/dmitrymomot/authkit/pkg/fingerprint"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// SessionCookieName holds the opaque session token for the local adapter.
const SessionCookieName = "auth_session"

// LocalAdapter authenticates against the service's own user table with
// cookie-carried opaque session tokens.
type LocalAdapter struct {
	svc      *auth.Service
	cookies  *cookie.Manager
	loginURL string
}

var _ Adapter = (*LocalAdapter)(nil)

// NewLocalAdapter creates the first-party credential adapter.
func NewLocalAdapter(svc *auth.Service, cookies *cookie.Manager, loginURL string) *LocalAdapter {
	if svc == nil {
		panic("provider: auth service is required")
	}
	if cookies == nil {
		panic("provider: cookie manager is required")
	}
	if loginURL == "" {
		loginURL = "/login"
	}
	return &LocalAdapter{svc: svc, cookies: cookies, loginURL: loginURL}
}

func (a *LocalAdapter) Name() auth.Provider { return auth.ProviderLocal }

func (a *LocalAdapter) CurrentUser(r *http.Request) (*auth.User, error) {
	user, _, err := a.validate(r)
	return user, err
}

func (a *LocalAdapter) CurrentSession(r *http.Request) (*session.Session, error) {
	_, sess, err := a.validate(r)
	return sess, err
}

// validate resolves the session cookie and checks the request against the
// fingerprint recorded at login. A mismatch is a soft signal: the session
// stays usable, the anomaly is recorded for review.
func (a *LocalAdapter) validate(r *http.Request) (*auth.User, *session.Session, error) {
	token, err := a.cookies.GetSigned(r, SessionCookieName)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}

	user, sess, err := a.svc.ValidateSession(r.Context(), token)
	if err != nil {
		return nil, nil, ErrNotAuthenticated
	}

	if !fingerprint.Match(r, sess.Fingerprint) {
		a.svc.FlagSessionAnomaly(r.Context(), sess, &session.ClientInfo{
			IP:          clientip.FromRequest(r),
			UserAgent:   r.UserAgent(),
			Fingerprint: fingerprint.Generate(r),
		})
	}
	return user, sess, nil
}

// IssueSession writes the session cookie after a successful login or
// registration.
func (a *LocalAdapter) IssueSession(w http.ResponseWriter, sess *session.Session) error {
	return a.cookies.SetSigned(w, SessionCookieName, sess.Token,
		cookie.WithMaxAge(int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds())))
}

// ClearSessionCookie removes the session cookie without touching the store.
// Used when the session was already destroyed server-side.
func (a *LocalAdapter) ClearSessionCookie(w http.ResponseWriter) {
	a.cookies.Delete(w, SessionCookieName)
}

func (a *LocalAdapter) SignOut(w http.ResponseWriter, r *http.Request) error {
	token, err := a.cookies.GetSigned(r, SessionCookieName)
	if err == nil {
		_ = a.svc.Logout(r.Context(), token)
	}
	a.cookies.Delete(w, SessionCookieName)
	return nil
}

func (a *LocalAdapter) ProtectRoute(r *http.Request) Decision {
	if _, err := a.CurrentUser(r); err != nil {
		return Decision{Authenticated: false, RedirectURL: a.loginURL}
	}
	return Decision{Authenticated: true}
}
