package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/cookie"
	"github.com/dmitrymomot/authkit/pkg/jwks"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// Cookie names for the tokens issued by the Cognito hosted UI flow.
const (
	cognitoIDTokenCookie     = "cognito_id_token"
	cognitoAccessTokenCookie = "cognito_access_token"
)

// CognitoConfig configures the AWS Cognito adapter.
type CognitoConfig struct {
	Region       string `env:"COGNITO_REGION"`
	UserPoolID   string `env:"COGNITO_USER_POOL_ID"`
	ClientID     string `env:"COGNITO_CLIENT_ID"`
	ClientSecret string `env:"COGNITO_CLIENT_SECRET"`
	// Domain is the hosted UI domain, e.g.
	// https://myapp.auth.us-east-1.amazoncognito.com.
	Domain      string `env:"COGNITO_DOMAIN"`
	RedirectURL string `env:"COGNITO_REDIRECT_URL"`
}

// Issuer returns the user pool's OIDC issuer.
func (c CognitoConfig) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// JWKSURL returns the pool's key set endpoint, derived from the issuer.
func (c CognitoConfig) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// globalSignOutAPI is the slice of the Cognito API the adapter needs.
type globalSignOutAPI interface {
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// CognitoAdapter authenticates through the Cognito hosted UI. The ID token
// is kept in a signed cookie and verified against the pool's JWKS on every
// request; the access token is kept alongside so sign-out can revoke it
// pool-wide.
type CognitoAdapter struct {
	svc      *auth.Service
	cookies  *cookie.Manager
	verifier *jwks.Verifier
	cfg      CognitoConfig
	oauth    *oauth2.Config
	idp      globalSignOutAPI
}

var _ Adapter = (*CognitoAdapter)(nil)

// CognitoOption configures a CognitoAdapter.
type CognitoOption func(*CognitoAdapter)

// WithCognitoClient overrides the AWS API client, mainly for tests.
func WithCognitoClient(client globalSignOutAPI) CognitoOption {
	return func(a *CognitoAdapter) { a.idp = client }
}

// NewCognitoAdapter creates the Cognito adapter.
func NewCognitoAdapter(ctx context.Context, svc *auth.Service, cookies *cookie.Manager, verifier *jwks.Verifier, cfg CognitoConfig, opts ...CognitoOption) (*CognitoAdapter, error) {
	if svc == nil {
		panic("provider: auth service is required")
	}
	if cookies == nil {
		panic("provider: cookie manager is required")
	}
	if verifier == nil {
		panic("provider: jwks verifier is required")
	}
	if cfg.Region == "" || cfg.UserPoolID == "" || cfg.ClientID == "" || cfg.Domain == "" {
		return nil, fmt.Errorf("%w: cognito requires region, user pool id, client id, and domain", ErrMisconfigured)
	}

	a := &CognitoAdapter{
		svc:      svc,
		cookies:  cookies,
		verifier: verifier,
		cfg:      cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Domain + "/oauth2/authorize",
				TokenURL: cfg.Domain + "/oauth2/token",
			},
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.idp == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("%w: load aws config: %w", ErrMisconfigured, err)
		}
		a.idp = cognitoidentityprovider.NewFromConfig(awsCfg)
	}

	return a, nil
}

func (a *CognitoAdapter) Name() auth.Provider { return auth.ProviderCognito }

// LoginURL starts the hosted UI authorization code flow.
func (a *CognitoAdapter) LoginURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code and stores the resulting
// tokens in signed cookies.
func (a *CognitoAdapter) HandleCallback(w http.ResponseWriter, r *http.Request) (*auth.User, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, ErrNotAuthenticated
	}

	token, err := a.oauth.Exchange(r.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("provider: cognito code exchange: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := a.resolveIDToken(r.Context(), idToken)
	if err != nil {
		return nil, err
	}

	if err := a.cookies.SetSigned(w, cognitoIDTokenCookie, idToken); err != nil {
		return nil, err
	}
	if err := a.cookies.SetSigned(w, cognitoAccessTokenCookie, token.AccessToken); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *CognitoAdapter) CurrentUser(r *http.Request) (*auth.User, error) {
	idToken, err := a.cookies.GetSigned(r, cognitoIDTokenCookie)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return a.resolveIDToken(r.Context(), idToken)
}

// resolveIDToken verifies the ID token against the pool's JWKS and maps the
// claims to a provisioned user.
func (a *CognitoAdapter) resolveIDToken(ctx context.Context, idToken string) (*auth.User, error) {
	claims, err := a.verifier.Verify(ctx, idToken, a.cfg.JWKSURL(), jwks.Options{
		Audience: a.cfg.ClientID,
		Issuer:   a.cfg.Issuer(),
	})
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrNotAuthenticated
	}
	email, _ := claims["email"].(string)
	emailVerified, _ := claims["email_verified"].(bool)
	givenName, _ := claims["given_name"].(string)
	familyName, _ := claims["family_name"].(string)
	picture, _ := claims["picture"].(string)

	user, err := a.svc.EnsureExternalUser(ctx, auth.ExternalUserParams{
		Provider:      auth.ProviderCognito,
		ExternalID:    sub,
		Email:         email,
		FirstName:     givenName,
		LastName:      familyName,
		AvatarURL:     picture,
		EmailVerified: emailVerified,
	})
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrAccountInactive
	}
	return user, nil
}

func (a *CognitoAdapter) CurrentSession(*http.Request) (*session.Session, error) {
	return nil, ErrNoSession
}

// SignOut revokes the access token pool-wide and clears the token cookies.
// Revocation is best effort; the cookies are cleared regardless.
func (a *CognitoAdapter) SignOut(w http.ResponseWriter, r *http.Request) error {
	if accessToken, err := a.cookies.GetSigned(r, cognitoAccessTokenCookie); err == nil {
		_, _ = a.idp.GlobalSignOut(r.Context(), &cognitoidentityprovider.GlobalSignOutInput{
			AccessToken: aws.String(accessToken),
		})
	}
	a.cookies.Delete(w, cognitoIDTokenCookie)
	a.cookies.Delete(w, cognitoAccessTokenCookie)
	return nil
}

// LogoutURL is the hosted UI endpoint that ends the Cognito session and
// redirects back to the given URL.
func (a *CognitoAdapter) LogoutURL(redirectTo string) string {
	return fmt.Sprintf("%s/logout?client_id=%s&logout_uri=%s",
		a.cfg.Domain, url.QueryEscape(a.cfg.ClientID), url.QueryEscape(redirectTo))
}

func (a *CognitoAdapter) ProtectRoute(r *http.Request) Decision {
	if _, err := a.CurrentUser(r); err != nil {
		return Decision{Authenticated: false, RedirectURL: a.LoginURL("")}
	}
	return Decision{Authenticated: true}
}
