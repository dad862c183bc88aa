package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"libris/internal/config"
	"libris/internal/http/handlers"
	applog "libris/internal/log"
	"libris/internal/repos"
)

const seedPassword = "Passw0rd!"

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		RequestTimeout:     5 * time.Second,
		LendingMaxAttempts: 5,
		LendingBaseDelay:   time.Millisecond,
		BcryptCost:         bcrypt.MinCost,
	}
}

func newTestApp(t *testing.T, mods ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := testConfig()
	for _, m := range mods {
		m(&cfg)
	}
	db, err := repos.OpenDB(repos.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), cfg.BcryptCost)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	deps := handlers.NewDeps(db, cfg)
	return &testApp{app: handlers.NewApp(cfg, deps), db: db, deps: deps}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": seedPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// captureLogs redirects the process logger while fn runs and returns the parsed lines.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	restore := applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	fn()
	restore()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
