package model

import "time"

// Product is a catalog item as stored in the `products` table. Prices are
// kept in cents to avoid floating point in money arithmetic.
type Product struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  uint32    `json:"price_cents"`
	Stock       uint32    `json:"stock"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
