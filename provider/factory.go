package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/cookie"
	"github.com/dmitrymomot/authkit/pkg/jwks"
	"github.com/dmitrymomot/authkit/pkg/logger"
)

// Config selects and configures the active identity provider.
type Config struct {
	// Provider selects the adapter: local, clerk, cloudflare, or cognito.
	Provider      string `env:"AUTH_PROVIDER" envDefault:"local"`
	LoginURL      string `env:"AUTH_LOGIN_URL" envDefault:"/login"`
	CookieSecret  string `env:"AUTH_COOKIE_SECRET"`
	SecureCookies bool   `env:"AUTH_SECURE_COOKIES" envDefault:"true"`

	Clerk      ClerkConfig
	Cloudflare CloudflareConfig
	Cognito    CognitoConfig
}

// Factory builds the configured adapter once and hands out the same instance
// afterwards. Reset discards the cached instance so configuration changes can
// take effect without a restart.
type Factory struct {
	cfg Config
	svc *auth.Service
	log *slog.Logger

	mu      sync.Mutex
	adapter Adapter
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger sets the logger used for configuration warnings.
func WithFactoryLogger(log *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFactory creates an adapter factory over the auth service.
func NewFactory(cfg Config, svc *auth.Service, opts ...FactoryOption) *Factory {
	if svc == nil {
		panic("provider: auth service is required")
	}
	f := &Factory{
		cfg: cfg,
		svc: svc,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Adapter returns the configured adapter, building it on first use. An
// unrecognized provider value falls back to Clerk with a warning rather than
// failing closed into the local adapter, which would silently bypass the
// external identity system the deployment intended.
func (f *Factory) Adapter(ctx context.Context) (Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.adapter != nil {
		return f.adapter, nil
	}

	adapter, err := f.build(ctx, f.cfg.Provider)
	if err != nil {
		return nil, err
	}

	f.adapter = adapter
	return adapter, nil
}

// Reset discards the cached adapter.
func (f *Factory) Reset() {
	f.mu.Lock()
	f.adapter = nil
	f.mu.Unlock()
}

func (f *Factory) build(ctx context.Context, name string) (Adapter, error) {
	switch name {
	case "local":
		cookies, err := f.cookieManager()
		if err != nil {
			return nil, err
		}
		return NewLocalAdapter(f.svc, cookies, f.cfg.LoginURL), nil

	case "clerk":
		return NewClerkAdapter(f.svc, f.cfg.Clerk)

	case "cloudflare":
		return NewCloudflareAdapter(f.svc, jwks.NewVerifier(jwks.WithLogger(f.log)), f.cfg.Cloudflare)

	case "cognito":
		cookies, err := f.cookieManager()
		if err != nil {
			return nil, err
		}
		return NewCognitoAdapter(ctx, f.svc, cookies, jwks.NewVerifier(jwks.WithLogger(f.log)), f.cfg.Cognito)

	default:
		f.log.Warn("unrecognized auth provider, falling back to clerk",
			logger.Error(ErrUnknownProvider), logger.Provider(name))
		return NewClerkAdapter(f.svc, f.cfg.Clerk)
	}
}

func (f *Factory) cookieManager() (*cookie.Manager, error) {
	if f.cfg.CookieSecret == "" {
		return nil, fmt.Errorf("%w: cookie secret is required", ErrMisconfigured)
	}
	cookies, err := cookie.NewManager(f.cfg.CookieSecret, cookie.WithSecureCookies(f.cfg.SecureCookies))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}
	return cookies, nil
}
