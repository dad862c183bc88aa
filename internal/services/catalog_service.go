package services

import (
	"context"
	"regexp"
	"strings"

	"libris/internal/domain"
	"libris/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Books *repos.BookRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, books *repos.BookRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Books: books, Prods: prods}
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return domain.Category{}, domain.ErrInvalidInput
	}
	return s.Cats.Create(ctx, name, slug)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return s.Cats.Get(ctx, id)
}

// UpdateCategory renames a category and re-derives its slug.
func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return domain.Category{}, domain.ErrInvalidInput
	}
	return s.Cats.Update(ctx, id, name, slug)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.Cats.Delete(ctx, id)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with '-'.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Books

func (s *CatalogService) ListBooks(ctx context.Context, categoryID string) ([]domain.Book, error) {
	return s.Books.List(ctx, categoryID)
}

// SearchMaxResults caps a single search response.
const SearchMaxResults = 20

// SearchBooks finds books whose title, author or ISBN contains q.
func (s *CatalogService) SearchBooks(ctx context.Context, q, categoryID string) ([]domain.Book, error) {
	return s.Books.Search(ctx, q, categoryID, SearchMaxResults)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (domain.Book, error) {
	return s.Books.Get(ctx, id)
}

// CreateBook stores a new book. Its Stock is the initial inventory.
func (s *CatalogService) CreateBook(ctx context.Context, p domain.Principal, b domain.Book) (domain.Book, error) {
	b.CreatedBy = p.UserID
	return s.Books.Create(ctx, b)
}

// UpdateBook rewrites metadata. b.Stock is ignored: stock moves only through lending.
func (s *CatalogService) UpdateBook(ctx context.Context, b domain.Book) (domain.Book, error) {
	return s.Books.Update(ctx, b)
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	return s.Books.Delete(ctx, id)
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context, q string) ([]domain.Product, error) {
	return s.Prods.List(ctx, strings.TrimSpace(q))
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Principal, prod domain.Product) (domain.Product, error) {
	prod.CreatedBy = p.UserID
	return s.Prods.Create(ctx, prod)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, prod domain.Product) (domain.Product, error) {
	return s.Prods.Update(ctx, prod)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.Prods.Delete(ctx, id)
}
