package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsahan/threadly/internal/httperr"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
	"github.com/iamsahan/threadly/internal/token"
)

const testSecret = "unit-test-secret"

type stubStore struct {
	users map[uint64]model.User
}

func (s *stubStore) FindByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// newProtectedServer wires a minimal Echo app with one authenticated route
// that echoes the resolved principal.
func newProtectedServer(t *testing.T, store CredentialStore) (*echo.Echo, *token.Codec, *Authenticator) {
	t.Helper()
	codec, err := token.NewCodec(testSecret, time.Minute)
	require.NoError(t, err)

	auth := NewAuthenticator(codec, store, false)

	e := echo.New()
	e.HTTPErrorHandler = httperr.NewHandler(false)
	e.GET("/protected", func(c echo.Context) error {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, p)
	}, auth.Authenticate)
	return e, codec, auth
}

func doRequest(e *echo.Echo, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			return ck
		}
	}
	return nil
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthenticateNoCookie(t *testing.T) {
	e, _, _ := newProtectedServer(t, &stubStore{})

	rec := doRequest(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login required to access this resource.", messageOf(t, rec))
	// Nothing to heal: no cookie-clearing on the missing-cookie path.
	assert.Nil(t, sessionCookie(t, rec))
}

func TestAuthenticateLogoutSentinel(t *testing.T) {
	e, _, _ := newProtectedServer(t, &stubStore{})

	rec := doRequest(e, token.LogoutSentinel)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login required to access this resource.", messageOf(t, rec))
}

func TestAuthenticateExpiredTokenClearsCookie(t *testing.T) {
	e, _, _ := newProtectedServer(t, &stubStore{})

	claims := jwt.MapClaims{"sub": 7, "exp": time.Now().UTC().Add(-time.Hour).Unix()}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doRequest(e, expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session expired, please login again.", messageOf(t, rec))

	ck := sessionCookie(t, rec)
	require.NotNil(t, ck, "expired token must clear the session cookie")
	assert.Equal(t, token.LogoutSentinel, ck.Value)
	assert.True(t, ck.Expires.Before(time.Now()) || ck.MaxAge < 0)
}

func TestAuthenticateForeignSecretClearsCookie(t *testing.T) {
	e, _, _ := newProtectedServer(t, &stubStore{})

	other, err := token.NewCodec("some-other-secret", time.Minute)
	require.NoError(t, err)
	forged, err := other.IssueSession(7)
	require.NoError(t, err)

	rec := doRequest(e, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token signature. Please login again.", messageOf(t, rec))

	ck := sessionCookie(t, rec)
	require.NotNil(t, ck)
	assert.Equal(t, token.LogoutSentinel, ck.Value)
}

func TestAuthenticateDeletedPrincipal(t *testing.T) {
	e, codec, _ := newProtectedServer(t, &stubStore{}) // store is empty

	signed, err := codec.IssueSession(7)
	require.NoError(t, err)

	rec := doRequest(e, signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User belonging to this token no longer exists. Please login again.", messageOf(t, rec))

	ck := sessionCookie(t, rec)
	require.NotNil(t, ck)
	assert.Equal(t, token.LogoutSentinel, ck.Value)
}

func TestAuthenticateSuccess(t *testing.T) {
	store := &stubStore{users: map[uint64]model.User{
		7: {ID: 7, Name: "Jane", Email: "jane@example.com", Role: model.RoleUser},
	}}
	e, codec, _ := newProtectedServer(t, store)

	signed, err := codec.IssueSession(7)
	require.NoError(t, err)

	rec := doRequest(e, signed)
	assert.Equal(t, http.StatusOK, rec.Code)

	var p model.Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, model.RoleUser, p.Role)

	// Success has no cookie side effect.
	assert.Nil(t, sessionCookie(t, rec))
}

func TestSessionCookieAttributes(t *testing.T) {
	codec, err := token.NewCodec(testSecret, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		prod     bool
		secure   bool
		sameSite http.SameSite
	}{
		{name: "dev", prod: false, secure: false, sameSite: http.SameSiteLaxMode},
		{name: "prod", prod: true, secure: true, sameSite: http.SameSiteStrictMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthenticator(codec, &stubStore{}, tt.prod)
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			auth.SetSessionCookie(c, "signed-token")

			ck := sessionCookie(t, rec)
			require.NotNil(t, ck)
			assert.Equal(t, "signed-token", ck.Value)
			assert.True(t, ck.HttpOnly)
			assert.Equal(t, tt.secure, ck.Secure)
			assert.Equal(t, tt.sameSite, ck.SameSite)
			assert.True(t, ck.Expires.After(time.Now()))
		})
	}
}

func TestClearSessionCookie(t *testing.T) {
	codec, err := token.NewCodec(testSecret, time.Minute)
	require.NoError(t, err)
	auth := NewAuthenticator(codec, &stubStore{}, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	auth.ClearSessionCookie(c)

	ck := sessionCookie(t, rec)
	require.NotNil(t, ck)
	assert.Equal(t, token.LogoutSentinel, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Expires.Before(time.Now()))
	assert.Negative(t, ck.MaxAge)
}
