package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libris/internal/domain"
)

// LoanRepo is the loan ledger. Records are inserted BORROWED, closed once, never deleted.
type LoanRepo struct {
	db  *sqlx.DB
	Now func() time.Time
}

func NewLoanRepo(db *sqlx.DB) *LoanRepo {
	return &LoanRepo{db: db, Now: func() time.Time { return time.Now().UTC() }}
}

const loanColumns = `id, user_id, book_id, borrow_date, return_date, status`

// HasOpenLoan reports whether userID currently holds bookID.
func (r *LoanRepo) HasOpenLoan(ctx context.Context, q sqlx.QueryerContext, userID, bookID string) (bool, error) {
	if q == nil {
		q = r.db
	}
	var n int
	err := sqlx.GetContext(ctx, q, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM loans
		WHERE user_id = ? AND book_id = ? AND status = 'BORROWED'
	`), userID, bookID)
	return n > 0, err
}

// Open inserts a BORROWED record unless the pair already has one. The check and
// the insert are one statement backed by the uq_loans_open partial index, so
// concurrent opens for the same pair cannot both succeed.
func (r *LoanRepo) Open(ctx context.Context, q sqlx.ExtContext, userID, bookID string) (domain.Loan, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Loan{}, err
	}
	loan := domain.Loan{
		ID:         id.String(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: r.Now(),
		Status:     domain.LoanBorrowed,
	}
	res, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO loans(id, user_id, book_id, borrow_date, status)
		VALUES (?, ?, ?, ?, 'BORROWED')
		ON CONFLICT (user_id, book_id) WHERE status = 'BORROWED' DO NOTHING
	`), loan.ID, loan.UserID, loan.BookID, loan.BorrowDate)
	if err != nil {
		return domain.Loan{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Loan{}, err
	}
	if n == 0 {
		return domain.Loan{}, domain.ErrAlreadyBorrowed
	}
	return loan, nil
}

// Close moves the pair's open record to RETURNED with returnDate = now, in one
// conditional update. ErrNoActiveLoan when nothing is open.
func (r *LoanRepo) Close(ctx context.Context, q sqlx.ExtContext, userID, bookID string) (domain.Loan, error) {
	var id string
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`
		UPDATE loans
		SET status = 'RETURNED', return_date = ?
		WHERE user_id = ? AND book_id = ? AND status = 'BORROWED'
		RETURNING id
	`), r.Now(), userID, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Loan{}, domain.ErrNoActiveLoan
	}
	if err != nil {
		return domain.Loan{}, err
	}
	return r.Get(ctx, q, id)
}

func (r *LoanRepo) Get(ctx context.Context, q sqlx.QueryerContext, id string) (domain.Loan, error) {
	if q == nil {
		q = r.db
	}
	var l domain.Loan
	err := sqlx.GetContext(ctx, q, &l, r.db.Rebind(`SELECT `+loanColumns+` FROM loans WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Loan{}, domain.ErrLoanNotFound
	}
	if err != nil {
		return domain.Loan{}, fmt.Errorf("get loan %s: %w", id, err)
	}
	return l, nil
}

// ListByUser returns the user's loans newest first, joined with book metadata.
func (r *LoanRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.LoanView, error) {
	out := []domain.LoanView{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT l.id, l.borrow_date, l.return_date, l.status,
		       b.id     AS "book.id",
		       b.title  AS "book.title",
		       b.author AS "book.author",
		       b.image  AS "book.image"
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.user_id = ?
		ORDER BY l.borrow_date DESC, l.id DESC
		LIMIT ? OFFSET ?
	`), userID, limit, offset)
	return out, err
}

func (r *LoanRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM loans WHERE user_id = ?`), userID)
	return n, err
}

func (r *LoanRepo) CountOpenByBook(ctx context.Context, bookID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM loans WHERE book_id = ? AND status = 'BORROWED'
	`), bookID)
	return n, err
}

// CountByBook counts every loan ever recorded for the book.
func (r *LoanRepo) CountByBook(ctx context.Context, q sqlx.QueryerContext, bookID string) (int, error) {
	if q == nil {
		q = r.db
	}
	var n int
	err := sqlx.GetContext(ctx, q, &n, r.db.Rebind(`SELECT COUNT(*) FROM loans WHERE book_id = ?`), bookID)
	return n, err
}
