package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/provider"
)

// Service exposes account management over a JSON HTTP API. It speaks to the
// auth service directly and issues first-party session cookies through the
// local adapter.
type Service struct {
	auth  *auth.Service
	local *provider.LocalAdapter
	log   *slog.Logger
}

// Option configures the account service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the account HTTP service.
func NewService(authSvc *auth.Service, local *provider.LocalAdapter, opts ...Option) *Service {
	if authSvc == nil {
		panic("account: auth service is required")
	}
	if local == nil {
		panic("account: local adapter is required")
	}

	s := &Service{
		auth:  authSvc,
		local: local,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the account router, ready to mount:
//
//	r.Mount("/account", accountSvc.Handle())
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	r.Post("/password/forgot", s.forgotPassword)
	r.Post("/password/reset", s.resetPassword)

	// Everything below requires an authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(provider.Protect(s.local, "/*"))

		r.Get("/me", s.currentUser)
		r.Patch("/me", s.updateProfile)
		r.Delete("/me", s.deleteAccount)
		r.Post("/password/change", s.changePassword)
		r.Post("/sessions/revoke-others", s.revokeOtherSessions)
	})

	return r
}
