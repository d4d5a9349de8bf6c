package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
)

// RequireRole enforces a role allow-list against the principal resolved by
// Authenticate. Being a method on Authenticator, it cannot exist in a
// route chain that has no authentication configured; the missing-principal
// branch below is a defensive check for mis-ordered wiring, not a normal
// runtime path.
func (a *Authenticator) RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return apperror.Unauthorized("Login required to access this resource.")
			}
			if !allowed[p.Role] {
				return apperror.Forbidden(fmt.Sprintf(
					"Role %q is not permitted to access this resource.", p.Role))
			}
			return next(c)
		}
	}
}
