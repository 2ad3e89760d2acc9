package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/authkit/pkg/clientip"
)

// Generate derives a stable device fingerprint from request attributes that
// rarely change within a browsing session: user agent, accept headers, and
// client IP. The result is a 32-character hex string.
//
// This is a soft signal for spotting stolen session tokens, not an identity
// proof: shared NATs and browser updates produce collisions and rotations.
func Generate(r *http.Request) string {
	components := []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		clientip.FromRequest(r),
	}

	var parts []string
	for _, c := range components {
		if c != "" {
			parts = append(parts, c)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// Match reports whether the request still matches a stored fingerprint. An
// empty stored fingerprint matches anything, so enabling fingerprinting
// later does not invalidate existing sessions.
func Match(r *http.Request, stored string) bool {
	if stored == "" {
		return true
	}
	return Generate(r) == stored
}
