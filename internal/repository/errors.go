// Package repository implements persistence over *sql.DB for users and the
// shop domain. Sentinel errors defined here form part of the closed error
// set the HTTP error handler normalizes; repositories never wrap database
// driver errors that the handler classifies itself (duplicate keys).
package repository

import "errors"

// ErrNotFound is returned by lookups that matched no row, and by
// reset-token lookups whose stored expiry has already passed. Callers
// translate it into the 401/404 appropriate for their context.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientStock is returned when an order transaction cannot
// reserve the requested quantity of a product. The whole order rolls
// back; partial reservations are never committed.
var ErrInsufficientStock = errors.New("insufficient stock")
