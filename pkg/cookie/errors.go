package cookie

import "errors"

var (
	// ErrSecretTooShort indicates the signing secret is under 32 bytes.
	ErrSecretTooShort = errors.New("cookie: signing secret must be at least 32 bytes")

	// ErrCookieNotFound indicates the request carries no such cookie.
	ErrCookieNotFound = errors.New("cookie: not found")

	// ErrInvalidSignature indicates the cookie value failed verification.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
)
