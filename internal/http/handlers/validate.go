package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/validate"
)

const fieldsKey = "product.fields"

// ValidateProduct rejects invalid product forms with 400 before the handler
// runs; valid fields are handed over through Locals.
func ValidateProduct(opts validate.ProductOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := validate.Product(func(k string) string { return c.FormValue(k) }, opts)
		if err != nil {
			return fail(c, "product.validate", err)
		}
		c.Locals(fieldsKey, f)
		return c.Next()
	}
}

func productFields(c *fiber.Ctx) (domain.ProductFields, bool) {
	f, ok := c.Locals(fieldsKey).(domain.ProductFields)
	return f, ok
}
