package handlers

import "github.com/gofiber/fiber/v2"

// Endpoint is one row of the /docs index.
type Endpoint struct {
	Method string
	Path   string
	Auth   string
	About  string
}

// Endpoints served by the API, listed on /docs.
var Endpoints = []Endpoint{
	{"POST", "/api/auth/login", "-", "Exchange email and password for a bearer token"},
	{"GET", "/api/auth/me", "user", "Current user"},
	{"POST", "/api/borrow/:bookId", "user", "Borrow one copy of a book"},
	{"POST", "/api/borrow/return/:bookId", "user", "Return a borrowed book"},
	{"GET", "/api/borrow/history?page&limit", "user", "Your loans, newest first"},
	{"GET", "/api/borrow/status/:bookId", "user", "Whether you hold the book and its availability"},
	{"GET", "/api/books?category", "-", "List books"},
	{"GET", "/api/books/:id", "-", "Book details"},
	{"GET", "/api/books/:id/availability", "-", "Stock level and open loans"},
	{"POST", "/api/books", "admin", "Create a book with its initial stock"},
	{"PUT", "/api/books/:id", "admin", "Update book metadata"},
	{"DELETE", "/api/books/:id", "admin", "Delete a book that was never lent"},
	{"GET", "/api/search?q&category", "-", "Search books by title, author or ISBN"},
	{"GET", "/api/categories", "-", "List categories"},
	{"GET", "/api/categories/:id", "-", "Category details"},
	{"POST", "/api/categories", "admin", "Create a category"},
	{"PUT", "/api/categories/:id", "admin", "Rename a category"},
	{"DELETE", "/api/categories/:id", "admin", "Delete a category"},
	{"GET", "/api/products?q", "-", "List products"},
	{"GET", "/api/products/:id", "-", "Product details"},
	{"POST", "/api/products", "admin", "Create a product"},
	{"PUT", "/api/products/:id", "admin", "Update a product"},
	{"DELETE", "/api/products/:id", "admin", "Delete a product"},
	{"GET", "/api/admin/inventory", "admin", "Stock and open loans for every book"},
	{"GET", "/healthz", "-", "Liveness"},
}

// GET /docs
func Docs(c *fiber.Ctx) error {
	return render(c, "docs", fiber.Map{"Endpoints": Endpoints})
}
