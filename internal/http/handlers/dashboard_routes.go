package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"stockroom/internal/config"
	"stockroom/internal/dashboard"
	applog "stockroom/internal/log"
)

// NewDashboardApp builds the server-rendered dashboard. It holds no data of
// its own; every page is built from api.
func NewDashboardApp(cfg config.Config, api dashboard.API, templates string) *fiber.App {
	engine := html.New(templates, ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return "$" + d.StringFixed(2) })
	engine.AddFunc("deref", func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	})
	engine.AddFunc("imageURL", func(img string) string {
		if strings.HasPrefix(img, "/") {
			return cfg.APIBaseURL + img
		}
		return img
	})

	app := fiber.New(fiber.Config{
		AppName:   "stockroom-dashboard",
		Views:     engine,
		BodyLimit: cfg.BodyLimitBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// product images come from the API origin
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     time.Hour,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))

	h := &DashboardHandler{API: api}
	app.Get("/", h.Index)
	app.Post("/products", h.SaveProduct)
	app.Post("/products/:id", h.SaveProduct)
	app.Post("/products/:id/delete", h.DeleteProduct)
	app.Post("/categories", h.CreateCategory)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
