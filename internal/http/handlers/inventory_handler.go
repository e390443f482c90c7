package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type InventoryHandler struct {
	Products *services.ProductService
}

type stockLevel struct {
	ID       int64              `json:"id"`
	Quantity int                `json:"quantity"`
	Status   domain.StockStatus `json:"status"`
	LowStock bool               `json:"low_stock"`
}

// Check reports the stock classification of one product.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "product.get", domain.ErrNotFound)
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return c.JSON(stockLevel{ID: p.ID, Quantity: p.Quantity, Status: domain.StatusFor(p.Quantity), LowStock: p.IsLowStock()})
}
