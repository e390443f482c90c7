package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"stockroom/internal/config"
	applog "stockroom/internal/log"
)

// NewApp builds the API server: middleware, routes (also under /api) and,
// for the local upload backend, the /uploads file route.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "stockroom",
		BodyLimit:    cfg.BodyLimitBytes,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	// Images are loaded cross-origin by the dashboard.
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	if cfg.RateLimitPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMin,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/uploads/")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests. Please try again later."})
			},
		}))
	}

	if cfg.UploadBackend == "local" {
		app.Get("/uploads/*", ServeUploads(cfg.UploadDir))
	}
	Register(app, d)
	Register(app.Group("/api"), d)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
	})
	return app
}

// Register mounts the REST surface on r. Reads are open; mutations pass
// through the token check.
func Register(r fiber.Router, d *Deps) {
	r.Get("/health", Health)

	r.Get("/products", d.ProductHandler.List)
	r.Get("/products/:id", d.ProductHandler.Get)
	r.Get("/products/:id/stock", d.InventoryHandler.Check)
	r.Post("/products", d.Auth, d.Validate, d.ProductHandler.Create)
	r.Put("/products/:id", d.Auth, d.Validate, d.ProductHandler.Update)
	r.Delete("/products/:id", d.Auth, d.ProductHandler.Delete)

	r.Get("/categories", d.CategoryHandler.List)
	r.Get("/categories/:id", d.CategoryHandler.Get)
	r.Post("/categories", d.Auth, d.CategoryHandler.Create)
	r.Put("/categories/:id", d.Auth, d.CategoryHandler.Update)
	r.Delete("/categories/:id", d.Auth, d.CategoryHandler.Delete)
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ServeUploads serves stored images from dir, refusing anything that could
// escape it.
func ServeUploads(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		name := c.Params("*")
		lower := strings.ToLower(name)
		if strings.Contains(lower, "..") || strings.Contains(lower, "%2e") || strings.ContainsAny(lower, "/\\\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": name})
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
		}
		full := filepath.Join(dir, name)
		if fi, err := os.Stat(full); name == "" || err != nil || fi.IsDir() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found."})
		}
		return c.SendFile(full)
	}
}
