package model

import "time"

// Role names stored on user records and embedded in the authorization
// allow-lists. The set is closed; anything else is rejected at registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the `users` table, including the secret columns. Only the
// repository and the auth handlers ever see this struct; request handlers
// work with Principal, which carries no secrets.
//
// ResetTokenHash holds the SHA-256 digest of the active password-reset
// token, never the plaintext. Both reset columns are NULL unless a reset
// is in flight.
type User struct {
	ID             uint64
	Name           string
	Email          string
	PasswordHash   string
	Role           string
	ResetTokenHash *string    // users.reset_token_hash (nullable)
	ResetExpiresAt *time.Time // users.reset_expires_at (nullable)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal is the authenticated identity resolved for the current request.
// It is constructed once per request by the authentication middleware from
// a verified token plus a store lookup, and is discarded at request end.
type Principal struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Principal strips the secret columns from a user record.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
