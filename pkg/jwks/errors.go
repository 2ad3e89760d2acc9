package jwks

import "errors"

var (
	// ErrVerificationFailed wraps any signature or claim validation failure.
	ErrVerificationFailed = errors.New("jwks: token verification failed")

	// ErrMalformedToken indicates the token could not be decoded at all.
	ErrMalformedToken = errors.New("jwks: malformed token")

	// ErrMissingKeyID indicates the token header has no kid.
	ErrMissingKeyID = errors.New("jwks: token header missing kid")

	// ErrMissingIssuer indicates the token carries no iss claim.
	ErrMissingIssuer = errors.New("jwks: token missing issuer claim")

	// ErrKeyNotFound indicates no key in the set matches the token's kid.
	ErrKeyNotFound = errors.New("jwks: no matching key in set")

	// ErrUnsupportedKeyType indicates a non-RSA key was requested.
	ErrUnsupportedKeyType = errors.New("jwks: unsupported key type")

	// ErrInvalidKey indicates the JWK material could not be parsed.
	ErrInvalidKey = errors.New("jwks: invalid key material")

	// ErrFetchFailed indicates the key set could not be retrieved.
	ErrFetchFailed = errors.New("jwks: failed to fetch key set")
)
