package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
)

// Client-facing messages for store failures, keyed by audit action.
var failures = map[string]string{
	"product.list":    "Failed to fetch products.",
	"product.get":     "Failed to fetch product.",
	"product.create":  "Failed to create product.",
	"product.update":  "Failed to update product.",
	"product.delete":  "Failed to delete product.",
	"category.list":   "Failed to fetch categories.",
	"category.get":    "Failed to fetch category.",
	"category.create": "Failed to create category.",
	"category.update": "Failed to update category.",
	"category.delete": "Failed to delete category.",
}

func notFoundMessage(action string) string {
	if strings.HasPrefix(action, "category.") {
		return "Category not found."
	}
	return "Product not found."
}

func conflictMessage(action string) string {
	if action == "category.delete" {
		return "Category is still used by products."
	}
	return "Category name already exists."
}

// fail maps err onto a status code and writes {"error": ...}. Store failures
// are logged with the underlying error; the client only sees a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		msg := domain.Message(err, "Invalid input.")
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": msg})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundMessage(action)})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflictMessage(action)})
	}
	applog.Error(c, action, err, nil)
	msg, ok := failures[action]
	if !ok {
		msg = "Something went wrong. Please try again."
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// ErrorHandler answers anything a handler returned instead of writing.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

// render injects the CSRF token into dashboard templates.
func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if tok, ok := c.Locals("csrf").(string); ok && tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}
