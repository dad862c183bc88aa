package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchResult struct {
	Count int `json:"count"`
	Books []struct {
		ID string `json:"id"`
	} `json:"books"`
}

func (a *testApp) search(t *testing.T, query string) (int, searchResult) {
	t.Helper()
	resp, env := a.do(t, http.MethodGet, "/api/search"+query, "", nil)
	var res searchResult
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(env.Data, &res))
	}
	return resp.StatusCode, res
}

func TestSearchBooks(t *testing.T) {
	a := newTestApp(t)

	status, res := a.search(t, "?q=dune")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "book-dune", res.Books[0].ID)

	// author match, case-insensitive
	_, res = a.search(t, "?q=HAWKING")
	assert.Equal(t, 1, res.Count)

	// category narrows the match
	_, res = a.search(t, "?q=dune&category=cat-science")
	assert.Equal(t, 0, res.Count)

	// empty query is not an error
	status, res = a.search(t, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, res.Count)

	status, _ = a.search(t, "?q=%3Cscript%3E")
	assert.Equal(t, http.StatusBadRequest, status)
}
