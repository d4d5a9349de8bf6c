package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iamsahan/threadly/internal/model"
)

// OrderRepo persists orders and their line items.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts the order and its items in one transaction and returns
// the new order id.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, status, total_cents, shipping_address) VALUES (?,?,?,?)",
		o.UserID, o.Status, o.TotalCents, o.ShippingAddress)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, it := range o.Items {
		// Guarded decrement: concurrent orders race for the same rows, so
		// the stock check must happen inside this transaction.
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, ErrInsufficientStock
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents) VALUES (?,?,?,?,?)",
			id, it.ProductID, it.ProductName, it.Quantity, it.UnitPriceCents); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get fetches one order with its items.
func (r *OrderRepo) Get(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,status,total_cents,shipping_address,created_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.ShippingAddress, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	o.Items, err = r.items(ctx, o.ID)
	return o, err
}

// ListByUser returns a user's orders, newest first, items included.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return r.list(ctx,
		"SELECT id,user_id,status,total_cents,shipping_address,created_at FROM orders WHERE user_id=? ORDER BY id DESC",
		userID)
}

// ListAll returns every order, newest first. Admin only.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx,
		"SELECT id,user_id,status,total_cents,shipping_address,created_at FROM orders ORDER BY id DESC")
}

// UpdateStatus moves an order to a new status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents,
			&o.ShippingAddress, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT product_id,product_name,quantity,unit_price_cents FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
