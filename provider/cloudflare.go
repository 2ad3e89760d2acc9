package provider

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/jwks"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// Headers and cookie injected by the Cloudflare Access proxy.
const (
	cfEmailHeader = "Cf-Access-Authenticated-User-Email"
	cfUserHeader  = "Cf-Access-Authenticated-User-Id"
	cfJWTCookie   = "CF_Authorization"
)

// CloudflareConfig configures the Cloudflare Access adapter.
type CloudflareConfig struct {
	// TeamDomain is the Access team slug, e.g. "acme" for
	// acme.cloudflareaccess.com.
	TeamDomain string `env:"CF_ACCESS_TEAM_DOMAIN"`
	// PolicyAUD is the application audience tag from the Access policy.
	PolicyAUD string `env:"CF_ACCESS_POLICY_AUD"`
	// VerifyJWT enables cryptographic validation of the CF_Authorization
	// cookie against the team's certs. When false the adapter trusts the
	// proxy-injected headers, which is only safe when the origin is
	// reachable exclusively through Cloudflare.
	VerifyJWT bool `env:"CF_ACCESS_VERIFY_JWT" envDefault:"true"`
}

// CloudflareAdapter trusts identity asserted by the Cloudflare Access proxy
// in front of the origin. Users are provisioned just in time on first sight.
type CloudflareAdapter struct {
	svc      *auth.Service
	verifier *jwks.Verifier
	cfg      CloudflareConfig
}

var _ Adapter = (*CloudflareAdapter)(nil)

// NewCloudflareAdapter creates the Access adapter.
func NewCloudflareAdapter(svc *auth.Service, verifier *jwks.Verifier, cfg CloudflareConfig) (*CloudflareAdapter, error) {
	if svc == nil {
		panic("provider: auth service is required")
	}
	if cfg.VerifyJWT {
		if verifier == nil {
			return nil, fmt.Errorf("%w: jwt verification enabled without a verifier", ErrMisconfigured)
		}
		if cfg.TeamDomain == "" || cfg.PolicyAUD == "" {
			return nil, fmt.Errorf("%w: jwt verification requires team domain and policy aud", ErrMisconfigured)
		}
	}
	return &CloudflareAdapter{svc: svc, verifier: verifier, cfg: cfg}, nil
}

func (a *CloudflareAdapter) Name() auth.Provider { return auth.ProviderCloudflare }

func (a *CloudflareAdapter) certsURL() string {
	return fmt.Sprintf("https://%s.cloudflareaccess.com/cdn-cgi/access/certs", a.cfg.TeamDomain)
}

func (a *CloudflareAdapter) CurrentUser(r *http.Request) (*auth.User, error) {
	email := r.Header.Get(cfEmailHeader)
	externalID := r.Header.Get(cfUserHeader)
	if email == "" || externalID == "" {
		return nil, ErrNotAuthenticated
	}

	if a.cfg.VerifyJWT {
		c, err := r.Cookie(cfJWTCookie)
		if err != nil {
			return nil, ErrNotAuthenticated
		}
		claims, err := a.verifier.Verify(r.Context(), c.Value, a.certsURL(), jwks.Options{
			Audience: a.cfg.PolicyAUD,
		})
		if err != nil {
			return nil, ErrNotAuthenticated
		}
		// The headers must agree with the token, otherwise someone upstream
		// is forging them.
		if tokenEmail, _ := claims["email"].(string); tokenEmail != email {
			return nil, ErrNotAuthenticated
		}
	}

	// Access asserts only verified emails.
	user, err := a.svc.EnsureExternalUser(r.Context(), auth.ExternalUserParams{
		Provider:      auth.ProviderCloudflare,
		ExternalID:    externalID,
		Email:         email,
		EmailVerified: true,
	})
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrAccountInactive
	}
	return user, nil
}

func (a *CloudflareAdapter) CurrentSession(*http.Request) (*session.Session, error) {
	return nil, ErrNoSession
}

// SignOut has no local state to clear; Access terminates its own session at
// the team's logout endpoint.
func (a *CloudflareAdapter) SignOut(http.ResponseWriter, *http.Request) error {
	return nil
}

// LogoutURL is the Access endpoint that ends the proxy session.
func (a *CloudflareAdapter) LogoutURL() string {
	return fmt.Sprintf("https://%s.cloudflareaccess.com/cdn-cgi/access/logout", a.cfg.TeamDomain)
}

func (a *CloudflareAdapter) ProtectRoute(r *http.Request) Decision {
	if _, err := a.CurrentUser(r); err != nil {
		// Access normally intercepts before the origin; reaching here
		// unauthenticated means a misrouted request.
		return Decision{Authenticated: false, RedirectURL: a.LogoutURL()}
	}
	return Decision{Authenticated: true}
}
