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

// BookRepo holds catalog metadata. Stock is written once at Create; after that
// only InventoryRepo changes it.
type BookRepo struct {
	db   *sqlx.DB
	Cats *CategoryRepo
}

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db, Cats: NewCategoryRepo(db)} }

const bookColumns = `b.id, b.title, b.author, b.description, b.price, b.published_year, b.isbn,
	b.stock, b.image, b.created_by, b.created_at, b.updated_at`

// Exists reports whether bookID names a book. q may be a tx.
func (r *BookRepo) Exists(ctx context.Context, q sqlx.QueryerContext, bookID string) (bool, error) {
	if q == nil {
		q = r.db
	}
	var n int
	err := sqlx.GetContext(ctx, q, &n, r.db.Rebind(`SELECT COUNT(*) FROM books WHERE id = ?`), bookID)
	return n > 0, err
}

func (r *BookRepo) Get(ctx context.Context, id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`SELECT `+bookColumns+` FROM books b WHERE b.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, domain.ErrBookNotFound
	}
	if err != nil {
		return domain.Book{}, err
	}
	ids, err := r.categoryIDs(ctx, r.db, id)
	if err != nil {
		return domain.Book{}, err
	}
	b.CategoryIDs = ids
	return b, nil
}

// List returns all books ordered by title; categoryID narrows to one category.
func (r *BookRepo) List(ctx context.Context, categoryID string) ([]domain.Book, error) {
	return r.Search(ctx, "", categoryID, 0)
}

// Search matches q case-insensitively against title, author and ISBN.
// An empty q matches everything; limit <= 0 means no limit.
func (r *BookRepo) Search(ctx context.Context, q, categoryID string, limit int) ([]domain.Book, error) {
	var (
		where []string
		args  []any
		from  = `books b`
	)
	if categoryID != "" {
		from += ` JOIN book_categories bc ON bc.book_id = b.id`
		where = append(where, `bc.category_id = ?`)
		args = append(args, categoryID)
	}
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		like := "%" + q + "%"
		where = append(where, `(LOWER(b.title) LIKE ? OR LOWER(b.author) LIKE ? OR b.isbn LIKE ?)`)
		args = append(args, like, like, like)
	}
	query := `SELECT ` + bookColumns + ` FROM ` + from
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY b.title, b.id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	out := []domain.Book{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	links, err := r.allLinks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CategoryIDs = links[out[i].ID]
		if out[i].CategoryIDs == nil {
			out[i].CategoryIDs = []string{}
		}
	}
	return out, nil
}

// Create inserts the book with its initial stock and category links.
func (r *BookRepo) Create(ctx context.Context, b domain.Book) (domain.Book, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	err := InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.checkCategories(ctx, tx, b.CategoryIDs); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO books(id, title, author, description, price, published_year, isbn, stock, image, created_by, created_at, updated_at)
			VALUES (:id, :title, :author, :description, :price, :published_year, :isbn, :stock, :image, :created_by, :created_at, :updated_at)
		`, b)
		if IsUniqueViolation(err) {
			return domain.ErrDuplicateISBN
		}
		if err != nil {
			return err
		}
		return r.link(ctx, tx, b.ID, b.CategoryIDs)
	})
	if err != nil {
		return domain.Book{}, err
	}
	if b.CategoryIDs == nil {
		b.CategoryIDs = []string{}
	}
	return b, nil
}

// Update rewrites metadata and category links. Stock is left alone.
func (r *BookRepo) Update(ctx context.Context, b domain.Book) (domain.Book, error) {
	b.UpdatedAt = time.Now().UTC()
	err := InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.checkCategories(ctx, tx, b.CategoryIDs); err != nil {
			return err
		}
		res, err := tx.NamedExecContext(ctx, `
			UPDATE books
			SET title = :title, author = :author, description = :description, price = :price,
			    published_year = :published_year, isbn = :isbn, image = :image, updated_at = :updated_at
			WHERE id = :id
		`, b)
		if IsUniqueViolation(err) {
			return domain.ErrDuplicateISBN
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrBookNotFound
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM book_categories WHERE book_id = ?`), b.ID); err != nil {
			return err
		}
		return r.link(ctx, tx, b.ID, b.CategoryIDs)
	})
	if err != nil {
		return domain.Book{}, err
	}
	return r.Get(ctx, b.ID)
}

// Delete removes a book that has never been lent. Loan records are permanent,
// so a book with any history is refused with ErrBookInUse.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	return InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var loans int
		if err := tx.GetContext(ctx, &loans, tx.Rebind(`SELECT COUNT(*) FROM loans WHERE book_id = ?`), id); err != nil {
			return err
		}
		if loans > 0 {
			return domain.ErrBookInUse
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM books WHERE id = ?`), id)
		if IsForeignKeyViolation(err) {
			// a loan was opened after the count above
			return domain.ErrBookInUse
		}
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrBookNotFound
		}
		return nil
	})
}

func (r *BookRepo) checkCategories(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	missing, err := r.Cats.MissingIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *BookRepo) link(ctx context.Context, tx *sqlx.Tx, bookID string, categoryIDs []string) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO book_categories(book_id, category_id) VALUES (?, ?)
			ON CONFLICT(book_id, category_id) DO NOTHING
		`), bookID, cid); err != nil {
			return err
		}
	}
	return nil
}

func (r *BookRepo) categoryIDs(ctx context.Context, q sqlx.QueryerContext, bookID string) ([]string, error) {
	ids := []string{}
	err := sqlx.SelectContext(ctx, q, &ids, r.db.Rebind(`
		SELECT category_id FROM book_categories WHERE book_id = ? ORDER BY category_id
	`), bookID)
	return ids, err
}

func (r *BookRepo) allLinks(ctx context.Context) (map[string][]string, error) {
	var rows []struct {
		BookID     string `db:"book_id"`
		CategoryID string `db:"category_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT book_id, category_id FROM book_categories ORDER BY category_id`); err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, row := range rows {
		out[row.BookID] = append(out[row.BookID], row.CategoryID)
	}
	return out, nil
}
