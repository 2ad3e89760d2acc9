package provider

import (
	"net/http"
	"path"
	"strings"
)

// Protect guards routes matching the given patterns. Patterns follow
// path.Match syntax, with a trailing "/*" extended to match any nested path.
// Requests that fail the adapter's check are redirected for browser clients
// and answered 401 for API clients. Authenticated requests proceed with the
// user attached to the context.
func Protect(adapter Adapter, patterns ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesAny(r.URL.Path, patterns) {
				next.ServeHTTP(w, r)
				return
			}

			decision := adapter.ProtectRoute(r)
			if !decision.Authenticated {
				if wantsJSON(r) || decision.RedirectURL == "" {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, decision.RedirectURL, http.StatusSeeOther)
				return
			}

			user, err := adapter.CurrentUser(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func matchesAny(requestPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matches(requestPath, pattern) {
			return true
		}
	}
	return false
}

func matches(requestPath, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return requestPath == prefix || strings.HasPrefix(requestPath, prefix+"/")
	}
	ok, err := path.Match(pattern, requestPath)
	return err == nil && ok
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
