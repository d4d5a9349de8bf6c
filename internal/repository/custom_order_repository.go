package repository

import (
	"context"
	"database/sql"

	"github.com/iamsahan/threadly/internal/model"
)

// CustomOrderRepo persists made-to-measure requests.
type CustomOrderRepo struct{ DB *sql.DB }

func NewCustomOrderRepo(db *sql.DB) *CustomOrderRepo { return &CustomOrderRepo{DB: db} }

// Create stores a request and returns its id. Status always starts at
// REQUESTED regardless of what the caller set.
func (r *CustomOrderRepo) Create(ctx context.Context, co model.CustomOrder) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO custom_orders (user_id, garment, measurements, notes, status) VALUES (?,?,?,?,?)",
		co.UserID, co.Garment, co.Measurements, co.Notes, model.CustomRequested)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns a user's requests, newest first.
func (r *CustomOrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.CustomOrder, error) {
	return r.list(ctx,
		"SELECT id,user_id,garment,measurements,notes,status,created_at FROM custom_orders WHERE user_id=? ORDER BY id DESC",
		userID)
}

// ListAll returns every request, newest first. Admin only.
func (r *CustomOrderRepo) ListAll(ctx context.Context) ([]model.CustomOrder, error) {
	return r.list(ctx,
		"SELECT id,user_id,garment,measurements,notes,status,created_at FROM custom_orders ORDER BY id DESC")
}

// UpdateStatus moves a request to a new status.
func (r *CustomOrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE custom_orders SET status=? WHERE id=?", status, id)
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

func (r *CustomOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.CustomOrder, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CustomOrder
	for rows.Next() {
		var co model.CustomOrder
		if err := rows.Scan(&co.ID, &co.UserID, &co.Garment, &co.Measurements,
			&co.Notes, &co.Status, &co.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}
