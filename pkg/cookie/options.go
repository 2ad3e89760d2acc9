package cookie

import "net/http"

type options struct {
	path     string
	domain   string
	maxAge   int
	httpOnly bool
	secure   bool
	sameSite http.SameSite
}

func defaultOptions() options {
	return options{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteStrictMode,
	}
}

// Option overrides a single cookie attribute.
type Option func(*options)

func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

func WithDomain(domain string) Option {
	return func(o *options) { o.domain = domain }
}

func WithMaxAge(seconds int) Option {
	return func(o *options) { o.maxAge = seconds }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *options) { o.httpOnly = httpOnly }
}

func WithSecure(secure bool) Option {
	return func(o *options) { o.secure = secure }
}

func WithSameSite(mode http.SameSite) Option {
	return func(o *options) { o.sameSite = mode }
}
