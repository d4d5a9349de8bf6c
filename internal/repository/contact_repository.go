package repository

import (
	"context"
	"database/sql"

	"github.com/iamsahan/threadly/internal/model"
)

// ContactRepo persists contact-form submissions.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// Create stores a submission and returns its id.
func (r *ContactRepo) Create(ctx context.Context, c model.Contact) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (name, email, message) VALUES (?,?,?)",
		c.Name, c.Email, c.Message)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all submissions, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,message,created_at FROM contacts ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a submission.
func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM contacts WHERE id=?", id)
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
