// Package token signs and verifies the credentials used by the auth
// pipeline: stateless HS256 session tokens carried in a cookie, and random
// one-time password-reset tokens that are persisted only as SHA-256 hashes.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LogoutSentinel is the cookie value written at logout. The authentication
// middleware treats it the same as a missing cookie.
const LogoutSentinel = "none"

// ResetTokenTTL is the absolute lifetime of a password-reset token.
const ResetTokenTTL = 10 * time.Minute

// Closed set of verification failures. The auth middleware and the HTTP
// error handler match on these instead of inspecting library error text.
var (
	ErrExpiredToken = errors.New("session token expired")
	ErrInvalidToken = errors.New("invalid session token")
)

// Codec issues and verifies session tokens against a single shared secret.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec validates the signing configuration once at startup. An empty
// secret or non-positive TTL is a deployment problem, not a per-request
// error, so it is surfaced here and never from IssueSession/VerifySession.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token: session ttl must be positive")
	}
	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

// SessionTTL returns the configured session lifetime.
func (c *Codec) SessionTTL() time.Duration { return c.ttl }

// IssueSession signs an HS256 JWT binding the principal id to an expiry a
// fixed duration from now. Pure function of input, secret and clock.
func (c *Codec) IssueSession(principalID uint64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": principalID,
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// VerifySession checks signature and expiry and returns the embedded
// principal id. Expired tokens fail with ErrExpiredToken; every other
// mismatch, including a token signed with a different secret or algorithm,
// fails with ErrInvalidToken.
func (c *Codec) VerifySession(raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// HS256 only; tokens minted under any other algorithm are rejected
		// even if they would verify against the same secret.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 0 {
		return 0, ErrInvalidToken
	}
	return uint64(sub), nil
}

// IssueReset generates a one-time password-reset token. The plaintext is
// 32 bytes of crypto/rand hex-encoded and is returned to the caller exactly
// once; only the SHA-256 hash and the expiry are meant to be persisted.
func IssueReset() (plaintext, hash string, expiresAt time.Time, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashReset(plaintext), time.Now().UTC().Add(ResetTokenTTL), nil
}

// HashReset returns the SHA-256 hex digest of a reset token. Verification
// hashes the client-submitted value and compares digests, so the plaintext
// never needs to be stored or logged.
func HashReset(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
