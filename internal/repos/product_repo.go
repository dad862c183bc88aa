package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libris/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, quantity, price, image, created_by, created_at, updated_at`

// List returns products ordered newest first. q filters by name (case-insensitive substring).
func (r *ProductRepo) List(ctx context.Context, q string) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productColumns+`
		FROM products
		WHERE `+where+`
		ORDER BY created_at DESC, id`), args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products(id, name, quantity, price, image, created_by, created_at, updated_at)
		VALUES (:id, :name, :quantity, :price, :image, :created_by, :created_at, :updated_at)
	`, p)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Update overwrites the mutable fields of p.ID.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products
		SET name = :name, quantity = :quantity, price = :price, image = :image, updated_at = :updated_at
		WHERE id = :id
	`, p)
	if err != nil {
		return domain.Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return r.Get(ctx, p.ID)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
