package model

import "time"

// Custom order statuses. A request moves from REQUESTED through QUOTED to
// ACCEPTED/REJECTED by admin action.
const (
	CustomRequested = "REQUESTED"
	CustomQuoted    = "QUOTED"
	CustomAccepted  = "ACCEPTED"
	CustomRejected  = "REJECTED"
)

// ValidCustomOrderStatus reports whether s is a known custom-order status.
func ValidCustomOrderStatus(s string) bool {
	switch s {
	case CustomRequested, CustomQuoted, CustomAccepted, CustomRejected:
		return true
	}
	return false
}

// CustomOrder is a made-to-measure garment request from an authenticated
// customer, handled manually by admins.
type CustomOrder struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	Garment      string    `json:"garment"`
	Measurements string    `json:"measurements"`
	Notes        string    `json:"notes"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
