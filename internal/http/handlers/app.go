package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"libris/internal/config"
	applog "libris/internal/log"
)

// NewApp builds the fiber app with middlewares and every route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        Views(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	if cfg.RateLimitPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMin,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return failMsg(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon", nil)
			},
		}))
	}
	if cfg.RequestTimeout > 0 {
		app.Use(requestTimeout(cfg.RequestTimeout))
	}

	// ---------- Routes ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return ok(c, fiber.StatusOK, "ok", nil) })
	app.Get("/docs", Docs)

	api := app.Group("/api")
	authed := RequireAuth(deps.Auth)
	admin := RequireAdmin()

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return failMsg(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.", nil)
		},
	}), deps.AuthHandler.Login)
	api.Get("/auth/me", authed, deps.AuthHandler.Me)

	borrow := api.Group("/borrow", authed)
	borrow.Get("/history", deps.LendingHandler.HistoryPage)
	borrow.Get("/status/:bookId", deps.LendingHandler.Status)
	borrow.Post("/return/:bookId", deps.LendingHandler.Return)
	borrow.Post("/:bookId", deps.LendingHandler.Borrow)

	api.Get("/books", deps.BookHandler.List)
	api.Get("/books/:id", deps.BookHandler.Get)
	api.Get("/books/:id/availability", deps.BookHandler.Availability)
	api.Post("/books", authed, admin, deps.BookHandler.Create)
	api.Put("/books/:id", authed, admin, deps.BookHandler.Update)
	api.Delete("/books/:id", authed, admin, deps.BookHandler.Delete)

	api.Get("/search", deps.SearchHandler.Search)

	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/:id", deps.CategoryHandler.Get)
	api.Post("/categories", authed, admin, deps.CategoryHandler.Create)
	api.Put("/categories/:id", authed, admin, deps.CategoryHandler.Update)
	api.Delete("/categories/:id", authed, admin, deps.CategoryHandler.Delete)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Post("/products", authed, admin, deps.ProductHandler.Create)
	api.Put("/products/:id", authed, admin, deps.ProductHandler.Update)
	api.Delete("/products/:id", authed, admin, deps.ProductHandler.Delete)

	api.Get("/admin/inventory", authed, admin, deps.AdminHandler.Inventory)

	app.Use(func(c *fiber.Ctx) error {
		return failMsg(c, fiber.StatusNotFound, "route not found", nil)
	})
	return app
}

// requestTimeout bounds the handler's user context. Work that observes the
// context (store calls, retries) stops when it expires.
func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
