package provider

import "errors"

var (
	ErrNotAuthenticated = errors.New("provider: not authenticated")
	ErrNoSession        = errors.New("provider: provider does not manage sessions")
	ErrUnknownProvider  = errors.New("provider: unknown provider")
	ErrMisconfigured    = errors.New("provider: misconfigured")
)
