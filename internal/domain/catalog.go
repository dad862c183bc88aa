package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Book struct {
	ID            string          `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Author        string          `db:"author" json:"author"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	PublishedYear int             `db:"published_year" json:"publishedYear"`
	ISBN          string          `db:"isbn" json:"isbn"`
	Stock         int             `db:"stock" json:"stock"`
	Image         string          `db:"image" json:"image,omitempty"`
	CreatedBy     string          `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
	CategoryIDs   []string        `db:"-" json:"categories"`
}

type Product struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Image     string          `db:"image" json:"image,omitempty"`
	CreatedBy string          `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

type Availability struct {
	BookID    string `json:"bookId"`
	Status    string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Stock     int    `json:"stock"`
	OpenLoans int    `json:"openLoans"`
}
