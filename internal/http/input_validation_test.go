package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// malformed inputs are rejected before reaching the services
func TestValidationBadInputs(t *testing.T) {
	a := newTestApp(t)
	adminTok := a.login(t, "admin@libris.test")
	userTok := a.login(t, "alice@libris.test")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
	}{
		{"login bad json", http.MethodPost, "/api/auth/login", "", "{not json"},
		{"login bad email", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x", "password": "Passw0rd!"}},
		{"borrow bad id", http.MethodPost, "/api/borrow/bad%20id", userTok, nil},
		{"status bad id", http.MethodGet, "/api/borrow/status/bad$id", userTok, nil},
		{"book missing title", http.MethodPost, "/api/books", adminTok, map[string]any{"author": "A", "isbn": "9783333333333"}},
		{"book negative stock", http.MethodPost, "/api/books", adminTok, map[string]any{"title": "T", "author": "A", "isbn": "9783333333333", "stock": -1}},
		{"book negative price", http.MethodPost, "/api/books", adminTok, map[string]any{"title": "T", "author": "A", "isbn": "9783333333333", "price": "-2"}},
		{"book short isbn", http.MethodPost, "/api/books", adminTok, map[string]any{"title": "T", "author": "A", "isbn": "123"}},
		{"category empty", http.MethodPost, "/api/categories", adminTok, map[string]string{"name": "   "}},
		{"category symbols only", http.MethodPost, "/api/categories", adminTok, map[string]string{"name": "###"}},
		{"product search chars", http.MethodGet, "/api/products?q=%3Cscript%3E", "", nil},
		{"books bad category", http.MethodGet, "/api/books?category=a%2Fb", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := a.do(t, tc.method, tc.path, tc.token, tc.body)
			if tc.name == "login bad email" {
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				return
			}
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.False(t, env.Success)
		})
	}

	var stock int
	require.NoError(t, a.db.Get(&stock, `SELECT COUNT(*) FROM books`))
	assert.Equal(t, 3, stock)
}

func TestValidationReportsFields(t *testing.T) {
	a := newTestApp(t)

	resp, env := a.do(t, http.MethodPost, "/api/books", a.login(t, "admin@libris.test"), map[string]any{"stock": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation error", env.Message)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Equal(t, "required", fields["title"])
	assert.Equal(t, "required", fields["isbn"])
	assert.Equal(t, "gte 0", fields["stock"])
}
