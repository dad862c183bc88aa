package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libris/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, slug, created_at
		FROM categories
		ORDER BY name
	`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT id, name, slug, created_at FROM categories WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, err
}

// Create inserts a category. Name and slug are unique (name case-insensitively).
func (r *CategoryRepo) Create(ctx context.Context, name, slug string) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO categories(id, name, slug, created_at) VALUES (?, ?, ?, ?)
	`), c.ID, c.Name, c.Slug, c.CreatedAt)
	if IsUniqueViolation(err) {
		return domain.Category{}, domain.ErrDuplicateCategory
	}
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// Update renames the category. Name and slug stay unique.
func (r *CategoryRepo) Update(ctx context.Context, id, name, slug string) (domain.Category, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE categories SET name = ?, slug = ? WHERE id = ?
	`), name, slug, id)
	if IsUniqueViolation(err) {
		return domain.Category{}, domain.ErrDuplicateCategory
	}
	if err != nil {
		return domain.Category{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the category; book links cascade.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// MissingIDs returns the ids in ids that do not name a category.
func (r *CategoryRepo) MissingIDs(ctx context.Context, q sqlx.QueryerContext, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if q == nil {
		q = r.db
	}
	query, args, err := sqlx.In(`SELECT id FROM categories WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var found []string
	if err := sqlx.SelectContext(ctx, q, &found, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
