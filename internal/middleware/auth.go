// Package middleware contains the request-processing chain shared by all
// protected routes: cookie-session authentication, role authorization and
// the Redis response cache.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
	"github.com/iamsahan/threadly/internal/token"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "token"

// principalKey is the echo.Context key the resolved principal lives under.
const principalKey = "principal"

// CredentialStore is the user lookup the authentication middleware needs.
// Implementations must return repository.ErrNotFound for a missing record
// and must not expose secret columns on this path.
type CredentialStore interface {
	FindByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticator resolves the current principal from the session cookie.
// Role checks are methods on this type so authorization cannot be wired
// without authentication configured first.
type Authenticator struct {
	codec *token.Codec
	store CredentialStore
	prod  bool
}

// NewAuthenticator builds the middleware set. prod toggles the Secure and
// SameSite attributes on session cookies.
func NewAuthenticator(codec *token.Codec, store CredentialStore, prod bool) *Authenticator {
	return &Authenticator{codec: codec, store: store, prod: prod}
}

// Authenticate verifies the session cookie and attaches the principal to
// the request context. On success it has no side effects; on an expired,
// invalid or orphaned token it clears the cookie so stale clients
// self-heal, then fails with 401. All failures propagate to the central
// error handler.
func (a *Authenticator) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" || cookie.Value == token.LogoutSentinel {
			return apperror.Unauthorized("Login required to access this resource.")
		}

		id, err := a.codec.VerifySession(cookie.Value)
		if err != nil {
			a.ClearSessionCookie(c)
			switch {
			case errors.Is(err, token.ErrExpiredToken):
				return apperror.Unauthorized("Session expired, please login again.")
			case errors.Is(err, token.ErrInvalidToken):
				return apperror.Unauthorized("Invalid token signature. Please login again.")
			default:
				c.Logger().Errorf("unexpected session verification failure: %v", err)
				return apperror.Internal("Internal Server Error")
			}
		}

		u, err := a.store.FindByID(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Principal deleted after token issuance.
				a.ClearSessionCookie(c)
				return apperror.Unauthorized("User belonging to this token no longer exists. Please login again.")
			}
			return err
		}

		SetPrincipal(c, u.Principal())
		return next(c)
	}
}

// SetPrincipal attaches the principal for the remainder of the request.
func SetPrincipal(c echo.Context, p model.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the principal attached by Authenticate.
func CurrentPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

// SetSessionCookie writes a session token with an expiry matching the
// token's own lifetime. HttpOnly always; Secure and SameSite=Strict only
// in production so local HTTP development keeps working.
func (a *Authenticator) SetSessionCookie(c echo.Context, value string) {
	c.SetCookie(a.sessionCookie(value, time.Now().UTC().Add(a.codec.SessionTTL())))
}

// ClearSessionCookie overwrites the session cookie with the logout
// sentinel and an already-past expiry.
func (a *Authenticator) ClearSessionCookie(c echo.Context) {
	cookie := a.sessionCookie(token.LogoutSentinel, time.Unix(0, 0))
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

func (a *Authenticator) sessionCookie(value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if a.prod {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.prod,
		SameSite: sameSite,
	}
}
