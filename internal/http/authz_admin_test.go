package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// admin routes require the ADMIN role
func TestAdminGuardRequiresAdmin(t *testing.T) {
	a := newTestApp(t)
	book := map[string]any{"title": "New", "author": "A. Writer", "isbn": "9781111111111", "stock": 2, "price": "5.00"}

	resp, _ := a.do(t, http.MethodPost, "/api/books", "", book)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env := a.do(t, http.MethodPost, "/api/books", a.login(t, "alice@libris.test"), book)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = a.do(t, http.MethodGet, "/api/admin/inventory", a.login(t, "bob@libris.test"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminTok := a.login(t, "admin@libris.test")
	resp, env = a.do(t, http.MethodPost, "/api/books", adminTok, book)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var created struct {
		ID        string `json:"id"`
		Stock     int    `json:"stock"`
		CreatedBy string `json:"createdBy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 2, created.Stock)
	assert.Equal(t, "u-admin", created.CreatedBy)

	resp, _ = a.do(t, http.MethodGet, "/api/admin/inventory", adminTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminBookLifecycle(t *testing.T) {
	a := newTestApp(t)
	adminTok := a.login(t, "admin@libris.test")

	// duplicate isbn
	resp, _ := a.do(t, http.MethodPost, "/api/books", adminTok, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// stock is not editable through update
	resp, env := a.do(t, http.MethodPut, "/api/books/book-dune", adminTok, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "isbn": "9780441013593", "stock": 50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "stock")

	resp, _ = a.do(t, http.MethodPut, "/api/books/book-dune", adminTok, map[string]any{
		"title": "Dune (1965)", "author": "Frank Herbert", "isbn": "9780441013593", "categories": []string{"cat-fiction"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPut, "/api/books/no-such-book", adminTok, map[string]any{
		"title": "X", "author": "Y", "isbn": "9782222222222",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a book with loan history stays
	userTok := a.login(t, "alice@libris.test")
	resp, _ = a.do(t, http.MethodPost, "/api/borrow/book-dune", userTok, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, "/api/books/book-dune", adminTok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodDelete, "/api/books/book-brief-history", adminTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/books/book-brief-history", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoriesAndProducts(t *testing.T) {
	a := newTestApp(t)
	adminTok := a.login(t, "admin@libris.test")

	resp, env := a.do(t, http.MethodPost, "/api/categories", adminTok, map[string]string{"name": "Poetry"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	resp, _ = a.do(t, http.MethodPost, "/api/categories", adminTok, map[string]string{"name": "poetry"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = a.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cats []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	assert.Len(t, cats, 4)

	resp, env = a.do(t, http.MethodPost, "/api/products", adminTok, map[string]any{"name": "Bookmark", "quantity": 10, "price": "1.50"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var prod struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prod))
	assert.Equal(t, "1.5", prod.Price)

	resp, _ = a.do(t, http.MethodPost, "/api/products", adminTok, map[string]any{"name": "Bad", "price": "-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/products/"+prod.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodPut, "/api/products/"+prod.ID, adminTok, map[string]any{"name": "Bookmark", "quantity": 9, "price": "1.50"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, "/api/products/"+prod.ID, adminTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/products/"+prod.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryGetAndRename(t *testing.T) {
	a := newTestApp(t)
	adminTok := a.login(t, "admin@libris.test")

	resp, env := a.do(t, http.MethodGet, "/api/categories/cat-science", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cat struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Equal(t, "Science", cat.Name)

	resp, _ = a.do(t, http.MethodGet, "/api/categories/cat-missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = a.do(t, http.MethodPut, "/api/categories/cat-science", adminTok, map[string]string{"name": "Popular Science"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Equal(t, "cat-science", cat.ID)
	assert.Equal(t, "Popular Science", cat.Name)
	assert.Equal(t, "popular-science", cat.Slug)

	// names are unique case-insensitively
	resp, _ = a.do(t, http.MethodPut, "/api/categories/cat-science", adminTok, map[string]string{"name": "fiction"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPut, "/api/categories/cat-missing", adminTok, map[string]string{"name": "Other"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPut, "/api/categories/cat-science", a.login(t, "bob@libris.test"), map[string]string{"name": "Hijack"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
