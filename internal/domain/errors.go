package domain

import "errors"

// Lending.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrAlreadyBorrowed = errors.New("book already borrowed and not yet returned")
	ErrOutOfStock      = errors.New("book is out of stock")
	ErrNoActiveLoan    = errors.New("no active loan for this book")
)

// Store.
var (
	// ErrTransient marks an I/O or transaction-abort failure that is safe to retry.
	ErrTransient = errors.New("transient store failure")
	// ErrInvariantViolation aborts a transaction whose effects would break stock accounting.
	ErrInvariantViolation = errors.New("lending invariant violated")
)

// Catalog.
var (
	ErrDuplicateISBN     = errors.New("isbn already exists")
	ErrBookInUse         = errors.New("book has loan history")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidInput      = errors.New("invalid input")
)

// Auth.
var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
