// Package handler implements the HTTP endpoints. Handlers validate input,
// call repositories and return either a success payload or an error for
// the central error handler; they never render error JSON themselves.
package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
	"github.com/iamsahan/threadly/internal/token"
	"github.com/iamsahan/threadly/internal/utils"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (uint64, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (model.User, error)
	SetResetToken(ctx context.Context, id uint64, hash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// ResetMailer hands a password-reset token to the external mail pipeline.
// Delivery itself is not this service's concern.
type ResetMailer interface {
	PublishPasswordReset(ctx context.Context, email, resetToken string, expiresAt time.Time) error
}

// AuthHandler bundles the dependencies of the session lifecycle endpoints.
type AuthHandler struct {
	Users      UserStore
	Codec      *token.Codec
	Auth       *middleware.Authenticator
	Mail       ResetMailer
	BcryptCost int
}

func NewAuthHandler(users UserStore, codec *token.Codec, auth *middleware.Authenticator, mail ResetMailer, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Codec: codec, Auth: auth, Mail: mail, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Password string `json:"password"`
}
type updatePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates a user with role "user", signs a session and sets the
// cookie. The duplicate-email case deliberately propagates the raw driver
// error for the error handler to classify.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var v apperror.ValidationError
	if req.Name == "" {
		v.Add("name", "Name is required")
	}
	if req.Email == "" {
		v.Add("email", "Email is required")
	} else if !emailPattern.MatchString(req.Email) {
		v.Add("email", "Email is not valid")
	}
	if len(req.Password) < 8 {
		v.Add("password", "Password must be at least 8 characters")
	}
	if v.HasErrors() {
		return &v
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, hash, model.RoleUser)
	if err != nil {
		return err
	}

	signed, err := h.Codec.IssueSession(uid)
	if err != nil {
		return err
	}
	h.Auth.SetSessionCookie(c, signed)

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user":    model.Principal{ID: uid, Name: req.Name, Email: req.Email, Role: model.RoleUser},
	})
}

// Login verifies credentials and issues a fresh session cookie. Unknown
// email and wrong password return the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperror.BadRequest("Email and password are required.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized("Incorrect email or password.")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.Unauthorized("Incorrect email or password.")
	}

	signed, err := h.Codec.IssueSession(u.ID)
	if err != nil {
		return err
	}
	h.Auth.SetSessionCookie(c, signed)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Principal()})
}

// Logout destroys the session client-side by overwriting the cookie with
// the sentinel value and an expired attribute set.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.Auth.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out."})
}

// ForgotPassword issues a reset token, stores its hash with a 10 minute
// expiry and enqueues the email job. The response does not reveal whether
// the address exists. The plaintext token is never persisted or logged.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return apperror.BadRequest("Email is required.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	const sent = "If that email is registered, a reset link has been sent."

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"success": true, "message": sent})
		}
		return err
	}

	plaintext, hash, expiresAt, err := token.IssueReset()
	if err != nil {
		return err
	}
	if err := h.Users.SetResetToken(ctx, u.ID, hash, expiresAt); err != nil {
		return err
	}
	if err := h.Mail.PublishPasswordReset(ctx, u.Email, plaintext, expiresAt); err != nil {
		// The token is useless if the mail never goes out; roll it back so
		// the user can retry cleanly.
		_ = h.Users.ClearResetToken(ctx, u.ID)
		c.Logger().Errorf("queue password reset for user %d failed: %v", u.ID, err)
		return apperror.Internal("There was an error sending the email. Try again later.")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": sent})
}

// ResetPassword consumes a reset token from the URL. The store enforces
// the expiry window, so an expired token reads as unknown.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	raw := c.Param("token")
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if len(req.Password) < 8 {
		return apperror.BadRequest("Password must be at least 8 characters.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.FindByResetTokenHash(ctx, token.HashReset(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.BadRequest("Token is invalid or has expired.")
		}
		return err
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return err
	}
	// Clears the reset columns in the same statement, consuming the token.
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	signed, err := h.Codec.IssueSession(u.ID)
	if err != nil {
		return err
	}
	h.Auth.SetSessionCookie(c, signed)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Principal()})
}

// UpdatePassword lets an authenticated user rotate their password and
// re-issues the session.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}

	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if len(req.NewPassword) < 8 {
		return apperror.BadRequest("Password must be at least 8 characters.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// The principal carries no secrets; fetch the full record for the hash.
	u, err := h.Users.FindByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized("User belonging to this token no longer exists. Please login again.")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return apperror.Unauthorized("Current password is incorrect.")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	signed, err := h.Codec.IssueSession(u.ID)
	if err != nil {
		return err
	}
	h.Auth.SetSessionCookie(c, signed)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated."})
}

// Me returns the resolved principal.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": p})
}
