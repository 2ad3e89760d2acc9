package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// DefaultCacheTTL is how long a fetched key set is served from cache.
const DefaultCacheTTL = time.Hour

// Options constrains claim validation for a single verification.
type Options struct {
	// Audience, if set, must be a member of the token's aud claim.
	Audience string
	// Issuer, if set, must equal the token's iss claim.
	Issuer string
	// ClockTolerance is the leeway applied to exp/nbf checks.
	ClockTolerance time.Duration
}

// Verifier validates externally-issued RS256 tokens against published JWKS
// endpoints. Key sets are cached process-wide with a TTL; concurrent misses
// on the same URL may fetch redundantly, which is harmless for an idempotent
// read.
type Verifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	cache      *keyCache
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithHTTPClient sets a custom HTTP client for JWKS fetches.
func WithHTTPClient(client *http.Client) VerifierOption {
	return func(v *Verifier) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithLogger sets the logger used to record verification failures.
func WithLogger(log *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if log != nil {
			v.logger = log
		}
	}
}

// WithCacheTTL overrides the key set cache TTL.
func WithCacheTTL(ttl time.Duration) VerifierOption {
	return func(v *Verifier) {
		if ttl > 0 {
			v.cache.ttl = ttl
		}
	}
}

// NewVerifier creates a Verifier with a one-hour key set cache.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
		cache:      newKeyCache(DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates the token's signature against the key set published at
// jwksURL and its claims against opts. All failures collapse to an error so
// callers can treat "failed to verify" and "not present" identically; the
// reason is logged.
func (v *Verifier) Verify(ctx context.Context, tokenString, jwksURL string, opts Options) (jwt.MapClaims, error) {
	set, err := v.FetchKeySet(ctx, jwksURL)
	if err != nil {
		v.logFailure(ctx, jwksURL, err)
		return nil, err
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(opts.ClockTolerance),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(parserOpts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKeyID
		}

		key := set.Key(kid)
		if key == nil {
			return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
		}

		return key.PublicKey()
	})
	if err != nil {
		v.logFailure(ctx, jwksURL, err)
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	return claims, nil
}

func (v *Verifier) logFailure(ctx context.Context, jwksURL string, err error) {
	v.logger.DebugContext(ctx, "jwt verification failed",
		slog.String("jwks_url", jwksURL),
		logger.Error(err),
		logger.Component("jwks"),
	)
}

// Decode splits and decodes a token without verifying the signature. Useful
// for issuer discovery before the proper verification pass.
func Decode(tokenString string) (header map[string]any, claims jwt.MapClaims, err error) {
	claims = jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, nil, errors.Join(ErrMalformedToken, err)
	}
	return token.Header, claims, nil
}

// UnverifiedIssuer extracts the iss claim without verifying the token. The
// caller must still verify the token against the issuer's key set.
func UnverifiedIssuer(tokenString string) (string, error) {
	_, claims, err := Decode(tokenString)
	if err != nil {
		return "", err
	}
	iss, err := claims.GetIssuer()
	if err != nil || iss == "" {
		return "", ErrMissingIssuer
	}
	return iss, nil
}

// Key is a single JSON Web Key. Only RSA signature keys are supported, which
// covers Cloudflare Access and Cognito.
type Key struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// PublicKey builds an rsa.PublicKey from the JWK modulus and exponent.
func (k *Key) PublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("%w: kty %q", ErrUnsupportedKeyType, k.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, ErrInvalidKey
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

// Set is a published JSON Web Key Set.
type Set struct {
	Keys []Key `json:"keys"`
}

// Key returns the key with the given kid, or nil.
func (s *Set) Key(kid string) *Key {
	for i := range s.Keys {
		if s.Keys[i].Kid == kid {
			return &s.Keys[i]
		}
	}
	return nil
}

// FetchKeySet returns the key set published at url, serving from cache when
// fresh.
func (v *Verifier) FetchKeySet(ctx context.Context, url string) (*Set, error) {
	if set := v.cache.get(url); set != nil {
		return set, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	var set Set
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("%w: empty key set", ErrFetchFailed)
	}

	v.cache.put(url, &set)
	return &set, nil
}
