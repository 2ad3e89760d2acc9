package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// clerkSessionCookie is the cookie Clerk's frontend SDK maintains.
const clerkSessionCookie = "__session"

// ClerkConfig configures the Clerk adapter.
type ClerkConfig struct {
	SecretKey string `env:"CLERK_SECRET_KEY"`
	// SignInURL is the Clerk-hosted or frontend sign-in page.
	SignInURL string `env:"CLERK_SIGN_IN_URL" envDefault:"/sign-in"`
}

// ClerkAdapter verifies Clerk session JWTs and provisions local records for
// Clerk users just in time.
type ClerkAdapter struct {
	svc *auth.Service
	cfg ClerkConfig

	// Indirections over the Clerk SDK so tests can run without network.
	verifyToken func(ctx context.Context, token string) (subject string, err error)
	fetchUser   func(ctx context.Context, id string) (*clerk.User, error)
}

var _ Adapter = (*ClerkAdapter)(nil)

// NewClerkAdapter creates the Clerk adapter. The secret key is installed
// process-wide, matching how the Clerk SDK manages its backend client.
func NewClerkAdapter(svc *auth.Service, cfg ClerkConfig) (*ClerkAdapter, error) {
	if svc == nil {
		panic("provider: auth service is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: clerk requires a secret key", ErrMisconfigured)
	}
	clerk.SetKey(cfg.SecretKey)

	return &ClerkAdapter{
		svc: svc,
		cfg: cfg,
		verifyToken: func(ctx context.Context, token string) (string, error) {
			claims, err := clerkjwt.Verify(ctx, &clerkjwt.VerifyParams{Token: token})
			if err != nil {
				return "", err
			}
			return claims.RegisteredClaims.Subject, nil
		},
		fetchUser: func(ctx context.Context, id string) (*clerk.User, error) {
			return clerkuser.Get(ctx, id)
		},
	}, nil
}

func (a *ClerkAdapter) Name() auth.Provider { return auth.ProviderClerk }

func (a *ClerkAdapter) CurrentUser(r *http.Request) (*auth.User, error) {
	token := a.sessionToken(r)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	subject, err := a.verifyToken(r.Context(), token)
	if err != nil || subject == "" {
		return nil, ErrNotAuthenticated
	}

	clerkUser, err := a.fetchUser(r.Context(), subject)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	params := auth.ExternalUserParams{
		Provider:   auth.ProviderClerk,
		ExternalID: clerkUser.ID,
	}
	if clerkUser.FirstName != nil {
		params.FirstName = *clerkUser.FirstName
	}
	if clerkUser.LastName != nil {
		params.LastName = *clerkUser.LastName
	}
	if clerkUser.ImageURL != nil {
		params.AvatarURL = *clerkUser.ImageURL
	}
	params.Email, params.EmailVerified = primaryEmail(clerkUser)

	user, err := a.svc.EnsureExternalUser(r.Context(), params)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrAccountInactive
	}
	return user, nil
}

// sessionToken extracts the Clerk session JWT from the cookie or, for API
// clients, the Authorization header.
func (a *ClerkAdapter) sessionToken(r *http.Request) string {
	if c, err := r.Cookie(clerkSessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func primaryEmail(u *clerk.User) (email string, verified bool) {
	if u.PrimaryEmailAddressID == nil {
		return "", false
	}
	for _, addr := range u.EmailAddresses {
		if addr != nil && addr.ID == *u.PrimaryEmailAddressID {
			verified = addr.Verification != nil && addr.Verification.Status == "verified"
			return addr.EmailAddress, verified
		}
	}
	return "", false
}

func (a *ClerkAdapter) CurrentSession(*http.Request) (*session.Session, error) {
	return nil, ErrNoSession
}

// SignOut clears nothing server-side: the session lives in Clerk and its
// frontend SDK owns the cookie.
func (a *ClerkAdapter) SignOut(http.ResponseWriter, *http.Request) error {
	return nil
}

func (a *ClerkAdapter) ProtectRoute(r *http.Request) Decision {
	if _, err := a.CurrentUser(r); err != nil {
		return Decision{Authenticated: false, RedirectURL: a.cfg.SignInURL}
	}
	return Decision{Authenticated: true}
}
