// Package queue defines the message payloads exchanged over the broker
// and the background consumer for order events.
package queue

// Queue names. Durable; declared idempotently by both ends.
const (
	PasswordResetQueue = "email.password_reset"
	OrderPlacedQueue   = "order.placed"
)

// PasswordResetEvent is consumed by the external mail worker, which owns
// actual email delivery. The token here is the one-time plaintext; it
// exists only in flight and in the resulting email.
type PasswordResetEvent struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// OrderPlacedEvent is published when an order is committed, carrying
// enough for downstream notification and analytics without a DB query.
type OrderPlacedEvent struct {
	OrderID    uint64 `json:"order_id"`
	UserID     uint64 `json:"user_id"`
	TotalCents uint64 `json:"total_cents"`
	ItemCount  int    `json:"item_count"`
	PlacedAt   string `json:"placed_at"`
}
