package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"libris/internal/domain"
)

// InventoryRepo owns books.stock: the count of units currently available for loan.
// Mutations take a sqlx.ExtContext so they run inside the caller's transaction.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Row used by the admin inventory view
type InventoryRow struct {
	BookID    string `db:"book_id" json:"bookId"`
	Title     string `db:"title" json:"title"`
	Stock     int    `db:"stock" json:"stock"`
	OpenLoans int    `db:"open_loans" json:"openLoans"`
}

// ListAll returns every book with its stock and the number of units out on loan.
func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT b.id AS book_id, b.title, b.stock,
		       (SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.status = 'BORROWED') AS open_loans
		FROM books b
		ORDER BY b.title, b.id
	`)
	return rows, err
}

// Stock returns current stock for a book.
func (r *InventoryRepo) Stock(ctx context.Context, q sqlx.QueryerContext, bookID string) (int, error) {
	if q == nil {
		q = r.db
	}
	var stock int
	err := sqlx.GetContext(ctx, q, &stock, r.db.Rebind(`SELECT stock FROM books WHERE id = ?`), bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrBookNotFound
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// DecrementIfPositive takes one unit out of stock in a single conditional
// statement: two callers racing for the last unit cannot both succeed.
// It returns the new stock, ErrOutOfStock when stock is zero, or
// ErrBookNotFound when the book does not exist. Nothing is written on failure.
func (r *InventoryRepo) DecrementIfPositive(ctx context.Context, q sqlx.ExtContext, bookID string) (int, error) {
	var stock int
	err := sqlx.GetContext(ctx, q, &stock, q.Rebind(`
		UPDATE books
		SET stock = stock - 1, updated_at = ?
		WHERE id = ? AND stock > 0
		RETURNING stock
	`), time.Now().UTC(), bookID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, serr := r.Stock(ctx, q, bookID); serr != nil {
			return 0, serr
		}
		return 0, domain.ErrOutOfStock
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// Increment puts one unit back into stock. There is no upper bound.
func (r *InventoryRepo) Increment(ctx context.Context, q sqlx.ExtContext, bookID string) (int, error) {
	var stock int
	err := sqlx.GetContext(ctx, q, &stock, q.Rebind(`
		UPDATE books
		SET stock = stock + 1, updated_at = ?
		WHERE id = ?
		RETURNING stock
	`), time.Now().UTC(), bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrBookNotFound
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}
