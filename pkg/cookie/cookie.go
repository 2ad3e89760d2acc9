package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

// Manager reads and writes HMAC-signed cookies. Signing prevents client-side
// tampering with session tokens; it does not hide the value.
type Manager struct {
	secret        []byte
	secureCookies bool
}

// NewManager creates a cookie manager. The secret should be at least 32
// bytes of cryptographically random material.
func NewManager(secret string, opts ...ManagerOption) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}

	m := &Manager{secret: []byte(secret)}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSecureCookies forces the Secure attribute on all cookies. Enable in
// production; disable only for plain-HTTP local development.
func WithSecureCookies(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secureCookies = secure
	}
}

// SetSigned writes a signed cookie. Defaults are the strictest settings
// appropriate for a session cookie: HttpOnly, SameSite=Strict, path /.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	cfg := defaultOptions()
	cfg.secure = m.secureCookies
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &http.Cookie{
		Name:     name,
		Value:    m.sign(value),
		Path:     cfg.path,
		Domain:   cfg.domain,
		MaxAge:   cfg.maxAge,
		HttpOnly: cfg.httpOnly,
		Secure:   cfg.secure,
		SameSite: cfg.sameSite,
	}
	if err := c.Valid(); err != nil {
		return err
	}

	http.SetCookie(w, c)
	return nil
}

// GetSigned reads a cookie and verifies its signature.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrCookieNotFound
	}
	return m.verify(c.Value)
}

// Delete expires the cookie immediately.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// sign encodes value as base64url(value).base64url(hmac).
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (m *Manager) verify(signed string) (string, error) {
	valueEnc, sigEnc, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidSignature
	}

	value, err := base64.RawURLEncoding.DecodeString(valueEnc)
	if err != nil {
		return "", ErrInvalidSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return "", ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidSignature
	}

	return string(value), nil
}
