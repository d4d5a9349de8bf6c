package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iamsahan/threadly/internal/model"
)

// ProductRepo persists catalog items.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// List returns products, optionally filtered by category.
func (r *ProductRepo) List(ctx context.Context, category string) ([]model.Product, error) {
	q := "SELECT id,name,description,category,price_cents,stock,image_url,created_at,updated_at FROM products"
	args := []any{}
	if category != "" {
		q += " WHERE category=?"
		args = append(args, category)
	}
	q += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category,
			&p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get fetches a single product by id.
func (r *ProductRepo) Get(ctx context.Context, id uint64) (model.Product, error) {
	var p model.Product
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,description,category,price_cents,stock,image_url,created_at,updated_at FROM products WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Description, &p.Category,
		&p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts a product and returns its id.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (name, description, category, price_cents, stock, image_url) VALUES (?,?,?,?,?,?)",
		p.Name, p.Description, p.Category, p.PriceCents, p.Stock, p.ImageURL)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites all mutable columns of a product.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, category=?, price_cents=?, stock=?, image_url=? WHERE id=?",
		p.Name, p.Description, p.Category, p.PriceCents, p.Stock, p.ImageURL, p.ID)
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

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
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
