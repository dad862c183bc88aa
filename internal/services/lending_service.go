package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"libris/internal/domain"
	"libris/internal/repos"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	EventBookBorrowed = "BookBorrowed"
	EventBookReturned = "BookReturned"

	aggregateLoan = "loan"
)

// LoanEvent is the outbox payload for borrow and return.
type LoanEvent struct {
	LoanID     string     `json:"loanId"`
	UserID     string     `json:"userId"`
	BookID     string     `json:"bookId"`
	Stock      int        `json:"stock"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
}

// LendingService moves units between "available" (books.stock) and "out"
// (open loans). Each borrow and each return is one transaction covering the
// ledger write, the stock write and the outbox event.
type LendingService struct {
	DB        *sqlx.DB
	Books     *repos.BookRepo
	Loans     *repos.LoanRepo
	Inventory *repos.InventoryRepo
	Outbox    *repos.OutboxRepo
	Avail     *InventoryService
	Retry     RetryPolicy
}

func NewLendingService(db *sqlx.DB, books *repos.BookRepo, loans *repos.LoanRepo, inv *repos.InventoryRepo, outbox *repos.OutboxRepo) *LendingService {
	return &LendingService{
		DB:        db,
		Books:     books,
		Loans:     loans,
		Inventory: inv,
		Outbox:    outbox,
		Avail:     NewInventoryService(inv, loans),
		Retry:     DefaultRetryPolicy(),
	}
}

// Borrow opens a loan of bookID for p and takes one unit out of stock.
// Errors: ErrBookNotFound, ErrAlreadyBorrowed, ErrOutOfStock, ErrTransient
// (after retries), ErrInvariantViolation when the store rejects a write that
// would break a stock constraint.
func (s *LendingService) Borrow(ctx context.Context, p domain.Principal, bookID string) (domain.Loan, error) {
	if p.UserID == "" {
		return domain.Loan{}, domain.ErrUnauthorized
	}
	var loan domain.Loan
	err := retry(ctx, s.Retry, func(ctx context.Context) error {
		return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
			if err := s.requireBook(ctx, tx, bookID); err != nil {
				return err
			}
			l, err := s.Loans.Open(ctx, tx, p.UserID, bookID)
			if err != nil {
				return err
			}
			stock, err := s.Inventory.DecrementIfPositive(ctx, tx, bookID)
			if err != nil {
				return err
			}
			if err := s.appendEvent(ctx, tx, EventBookBorrowed, l, stock); err != nil {
				return err
			}
			loan = l
			return nil
		})
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return loan, nil
}

// Return closes p's open loan of bookID and puts the unit back into stock.
// Errors: ErrBookNotFound, ErrNoActiveLoan, ErrTransient (after retries).
func (s *LendingService) Return(ctx context.Context, p domain.Principal, bookID string) (domain.Loan, error) {
	if p.UserID == "" {
		return domain.Loan{}, domain.ErrUnauthorized
	}
	var loan domain.Loan
	err := retry(ctx, s.Retry, func(ctx context.Context) error {
		return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
			if err := s.requireBook(ctx, tx, bookID); err != nil {
				return err
			}
			l, err := s.Loans.Close(ctx, tx, p.UserID, bookID)
			if err != nil {
				return err
			}
			stock, err := s.Inventory.Increment(ctx, tx, bookID)
			if err != nil {
				return err
			}
			if err := s.appendEvent(ctx, tx, EventBookReturned, l, stock); err != nil {
				return err
			}
			loan = l
			return nil
		})
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return loan, nil
}

// Status reports whether p holds bookID and how available the book is.
func (s *LendingService) Status(ctx context.Context, p domain.Principal, bookID string) (domain.BorrowStatus, error) {
	if p.UserID == "" {
		return domain.BorrowStatus{}, domain.ErrUnauthorized
	}
	avail, err := s.Avail.CheckAvailability(ctx, bookID)
	if err != nil {
		return domain.BorrowStatus{}, err
	}
	held, err := s.Loans.HasOpenLoan(ctx, nil, p.UserID, bookID)
	if err != nil {
		return domain.BorrowStatus{}, err
	}
	return domain.BorrowStatus{BookID: bookID, IsBorrowed: held, Availability: avail}, nil
}

func (s *LendingService) requireBook(ctx context.Context, tx *sqlx.Tx, bookID string) error {
	ok, err := s.Books.Exists(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBookNotFound
	}
	return nil
}

func (s *LendingService) appendEvent(ctx context.Context, tx *sqlx.Tx, eventType string, l domain.Loan, stock int) error {
	payload, err := json.Marshal(LoanEvent{
		LoanID:     l.ID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		Stock:      stock,
		BorrowDate: l.BorrowDate,
		ReturnDate: l.ReturnDate,
	})
	if err != nil {
		return err
	}
	return s.Outbox.Append(ctx, tx, aggregateLoan, l.ID, eventType, payload)
}
