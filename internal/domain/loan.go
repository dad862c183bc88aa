package domain

import "time"

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanReturned LoanStatus = "RETURNED"
)

// Loan is one borrow event. It is created BORROWED and moves to RETURNED exactly once.
type Loan struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	BookID     string     `db:"book_id" json:"bookId"`
	BorrowDate time.Time  `db:"borrow_date" json:"borrowDate"`
	ReturnDate *time.Time `db:"return_date" json:"returnDate,omitempty"`
	Status     LoanStatus `db:"status" json:"status"`
}

func (l Loan) Open() bool { return l.Status == LoanBorrowed }

// BookSummary is the catalog data shown next to a loan in history views.
type BookSummary struct {
	ID     string `db:"id" json:"id"`
	Title  string `db:"title" json:"title"`
	Author string `db:"author" json:"author"`
	Image  string `db:"image" json:"image,omitempty"`
}

type LoanView struct {
	ID         string      `db:"id" json:"id"`
	BorrowDate time.Time   `db:"borrow_date" json:"borrowDate"`
	ReturnDate *time.Time  `db:"return_date" json:"returnDate,omitempty"`
	Status     LoanStatus  `db:"status" json:"status"`
	Book       BookSummary `db:"book" json:"book"`
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
	Limit        int  `json:"limit"`
}

type LoanPage struct {
	Records    []LoanView `json:"borrowRecords"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination derives page metadata from a total count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalRecords: total,
		HasNextPage:  page < pages,
		HasPrevPage:  page > 1,
		Limit:        limit,
	}
}

// BorrowStatus answers "do I hold this book, and can it be borrowed now".
type BorrowStatus struct {
	BookID       string       `json:"bookId"`
	IsBorrowed   bool         `json:"isBorrowed"`
	Availability Availability `json:"availability"`
}
