package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/domain"
	applog "libris/internal/log"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrBookNotFound, http.StatusNotFound},
		{domain.ErrOutOfStock, http.StatusBadRequest},
		{domain.ErrBookInUse, http.StatusConflict},
		{fmt.Errorf("%w: busy", domain.ErrTransient), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("borrow: %w", context.Canceled), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, "%v", tc.err)
	}
}

// a request abandoned by its client is not reported as a server fault
func TestFailCanceledIsNotLoggedAsError(t *testing.T) {
	var buf bytes.Buffer
	restore := applog.SetOutput(&buf)
	defer restore()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/handled", func(c *fiber.Ctx) error {
		return fail(c, "lending.borrow", fmt.Errorf("tx: %w", context.Canceled))
	})
	app.Get("/escaped", func(c *fiber.Ctx) error { return context.Canceled })

	for _, path := range []string{"/handled", "/escaped"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}

	var actions []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e struct {
			Level  string `json:"level"`
			Action string `json:"action"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		assert.NotEqual(t, "error", e.Level, e.Action)
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"lending.borrow.canceled", "server.canceled"}, actions)
}
