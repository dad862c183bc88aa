package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"libris/internal/auth"
	applog "libris/internal/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// sqlite connection defaults: FK enforcement, wait on locks instead of failing,
// and BEGIN IMMEDIATE so write transactions take the write lock up front.
var sqliteParams = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_txlock=immediate",
	"_time_format=sqlite",
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(sqliteParams, "&")
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// OpenDB connects, creates the schema and seeds baseline data. bcryptCost is
// the cost for seeded password hashes; <= 0 uses bcrypt's default.
func OpenDB(driver, dsn string, bcryptCost int) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "", DriverSQLite:
		db, err = sqlx.Open(DriverSQLite, sqliteDSN(dsn))
		if err != nil {
			return nil, err
		}
		if isMemory(dsn) {
			// every new connection would see a fresh empty database
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres, "postgres":
		db, err = sqlx.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedCatalog(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if err := seedUsers(ctx, db, bcryptCost); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return db, nil
}

func schema(driver string) []string {
	ts := "TIMESTAMP"
	if driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at ` + ts + ` NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email))`,

		`CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  created_at ` + ts + ` NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name))`,

		`CREATE TABLE IF NOT EXISTS books(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
  published_year INTEGER NOT NULL DEFAULT 0,
  isbn TEXT NOT NULL UNIQUE,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  image TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at ` + ts + ` NOT NULL,
  updated_at ` + ts + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_books_title ON books(LOWER(title))`,

		`CREATE TABLE IF NOT EXISTS book_categories(
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (book_id, category_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_book_categories_category ON book_categories(category_id)`,

		`CREATE TABLE IF NOT EXISTS loans(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  book_id TEXT NOT NULL REFERENCES books(id),
  borrow_date ` + ts + ` NOT NULL,
  return_date ` + ts + ` NULL,
  status TEXT NOT NULL CHECK (status IN ('BORROWED','RETURNED')),
  CHECK ((status = 'BORROWED' AND return_date IS NULL) OR (status = 'RETURNED' AND return_date IS NOT NULL))
)`,
		// at most one open loan per (user, book)
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_loans_open ON loans(user_id, book_id) WHERE status = 'BORROWED'`,
		`CREATE INDEX IF NOT EXISTS idx_loans_user_borrow ON loans(user_id, borrow_date)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_book_status ON loans(book_id, status)`,

		`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at ` + ts + ` NOT NULL,
  updated_at ` + ts + ` NOT NULL
)`,

		`CREATE TABLE IF NOT EXISTS outbox_events(
  id TEXT PRIMARY KEY,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at ` + ts + ` NOT NULL,
  published_at ` + ts + ` NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events(published_at, created_at)`,
	}
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedCatalog inserts demo categories and books. Safe to run on every startup.
func seedCatalog(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	cats := []struct{ ID, Name, Slug string }{
		{"cat-fiction", "Fiction", "fiction"},
		{"cat-science", "Science", "science"},
		{"cat-programming", "Programming", "programming"},
	}
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO categories(id, name, slug, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`), c.ID, c.Name, c.Slug, now); err != nil {
			return err
		}
	}

	books := []struct {
		ID, Title, Author, ISBN, Category string
		Year, Stock                       int
		Price                             string
	}{
		{"book-dune", "Dune", "Frank Herbert", "9780441013593", "cat-fiction", 1965, 3, "9.99"},
		{"book-brief-history", "A Brief History of Time", "Stephen Hawking", "9780553380163", "cat-science", 1988, 2, "14.50"},
		{"book-gopl", "The Go Programming Language", "Alan Donovan, Brian Kernighan", "9780134190440", "cat-programming", 2015, 1, "39.90"},
	}
	for _, b := range books {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO books(id, title, author, description, price, published_year, isbn, stock, image, created_by, created_at, updated_at)
			VALUES (?, ?, ?, '', ?, ?, ?, ?, '', 'u-admin', ?, ?)
			ON CONFLICT(id) DO NOTHING
		`), b.ID, b.Title, b.Author, decimal.RequireFromString(b.Price), b.Year, b.ISBN, b.Stock, now, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO book_categories(book_id, category_id) VALUES (?, ?)
			ON CONFLICT(book_id, category_id) DO NOTHING
		`), b.ID, b.Category); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(ctx context.Context, db *sqlx.DB, cost int) error {
	type u struct {
		ID, Email, Name, Role, Raw string
	}

	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.Info(nil, "seed.users", nil)

	users := []u{
		{"u-alice", "alice@libris.test", "Alice", "USER", "Passw0rd!"},
		{"u-bob", "bob@libris.test", "Bob", "USER", "Passw0rd!"},
		{"u-admin", "admin@libris.test", "Admin", "ADMIN", "Passw0rd!"},
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, x := range users {
		hash, err := auth.HashPassword(x.Raw, cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", x.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users(id,email,name,password_hash,role,created_at)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`), x.ID, x.Email, x.Name, hash, x.Role, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
