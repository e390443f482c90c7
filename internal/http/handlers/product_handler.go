package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	catID, err := validate.OptionalID("category_id", c.Query("category_id"))
	if err != nil {
		return fail(c, "product.list", err)
	}
	ps, err := h.Products.List(c.UserContext(), domain.ProductFilter{CategoryID: catID})
	if err != nil {
		return fail(c, "product.list", err)
	}
	return c.JSON(ps)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "product.get", domain.ErrNotFound)
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	f, ok := productFields(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	p, err := h.Products.Create(c.UserContext(), f, formImage(c))
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"id": p.ID, "name": p.Name, "qty": p.Quantity})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "product.update", domain.ErrNotFound)
	}
	f, ok := productFields(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	img := formImage(c)
	p, err := h.Products.Update(c.UserContext(), id, f, img)
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"id": p.ID, "qty": p.Quantity, "new_image": img != nil})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "product.delete", domain.ErrNotFound)
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// formImage returns the "image" part, or nil for non-multipart requests and
// forms without one.
func formImage(c *fiber.Ctx) *multipart.FileHeader {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return fh
}
