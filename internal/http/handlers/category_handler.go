package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type CategoryHandler struct {
	Categories *services.CategoryService
}

type categoryBody struct {
	Name string `json:"name" form:"name"`
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Categories.List(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "category.get", domain.ErrNotFound)
	}
	cat, err := h.Categories.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "category.get", err)
	}
	return c.JSON(cat)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, "category.create", domain.Invalid("name", "Name is required."))
	}
	cat, err := h.Categories.Create(c.UserContext(), body.Name)
	if err != nil {
		return fail(c, "category.create", err)
	}
	applog.Audit(c, "category.create", map[string]any{"id": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "category.update", domain.ErrNotFound)
	}
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, "category.update", domain.Invalid("name", "Name is required."))
	}
	cat, err := h.Categories.Rename(c.UserContext(), id, body.Name)
	if err != nil {
		return fail(c, "category.update", err)
	}
	applog.Audit(c, "category.update", map[string]any{"id": cat.ID, "name": cat.Name})
	return c.JSON(cat)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "category.delete", domain.ErrNotFound)
	}
	if err := h.Categories.Delete(c.UserContext(), id); err != nil {
		return fail(c, "category.delete", err)
	}
	applog.Audit(c, "category.delete", map[string]any{"id": id, "policy": string(h.Categories.Policy)})
	return c.SendStatus(fiber.StatusNoContent)
}
