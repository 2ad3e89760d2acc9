package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestManager_SignedRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewManager(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, "sid", "token-value", cookie.WithMaxAge(3600)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)
	assert.NotContains(t, cookies[0].Value, "token-value", "raw value must not appear verbatim")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got, err := m.GetSigned(req, "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-value", got)
}

func TestManager_TamperedValueRejected(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewManager(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, "sid", "original"))
	c := rec.Result().Cookies()[0]
	c.Value = "dGFtcGVyZWQ" + c.Value[11:]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)

	_, err = m.GetSigned(req, "sid")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestManager_MissingCookie(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewManager(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = m.GetSigned(req, "sid")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := cookie.NewManager("short")
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}

func TestManager_SecureFlag(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewManager(testSecret, cookie.WithSecureCookies(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, "sid", "v"))
	assert.True(t, rec.Result().Cookies()[0].Secure)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewManager(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "sid")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
