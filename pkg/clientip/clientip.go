// Package clientip extracts the originating client IP from a request,
// preferring proxy-injected headers over the socket address.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers in trust order. CF-Connecting-IP is set by Cloudflare's edge
// and cannot be spoofed behind it; X-Forwarded-For may carry a chain where
// the first hop is the client.
var headers = []string{
	"CF-Connecting-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// FromRequest returns the best-effort client IP. Falls back to the remote
// socket address, and to the raw RemoteAddr string if it cannot be split.
func FromRequest(r *http.Request) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// First entry of a comma-separated chain is the original client.
		ip := strings.TrimSpace(strings.Split(v, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
