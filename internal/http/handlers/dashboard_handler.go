package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/client"
	"stockroom/internal/dashboard"
	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/validate"
)

// DashboardHandler renders the inventory dashboard on top of the API client.
// UI state travels in the query string: ?q= ?category_id= ?edit= ?new=1.
type DashboardHandler struct {
	API dashboard.API
}

func (h *DashboardHandler) Index(c *fiber.Ctx) error {
	ctl := dashboard.NewController(h.API)
	ctl.Filter.CategoryID, _ = validate.OptionalID("category_id", c.Query("category_id"))
	if err := ctl.Load(c.UserContext()); err != nil {
		applog.Error(c, "dashboard.load", err, nil)
	}
	if id, ok := validate.ID(c.Query("edit")); ok {
		ctl.Edit(id)
	} else if c.Query("new") == "1" {
		ctl.New()
	}
	return h.page(c, fiber.StatusOK, ctl)
}

func (h *DashboardHandler) SaveProduct(c *fiber.Ctx) error {
	ctl := dashboard.NewController(h.API)
	if err := ctl.Load(c.UserContext()); err != nil {
		applog.Error(c, "dashboard.load", err, nil)
		return h.page(c, fiber.StatusBadGateway, ctl)
	}
	if raw := c.Params("id"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok || !ctl.Edit(id) {
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
		}
	} else {
		ctl.New()
	}

	form, err := productForm(c)
	if err != nil {
		ctl.Err = domain.Message(err, dashboard.MsgSaveProduct)
		return h.page(c, fiber.StatusBadRequest, ctl)
	}
	img, closeImg, err := formUpload(c)
	if err != nil {
		ctl.Err = dashboard.MsgSaveProduct
		return h.page(c, fiber.StatusBadRequest, ctl)
	}
	defer closeImg()

	if err := ctl.Save(c.UserContext(), form, img); err != nil {
		applog.Error(c, "dashboard.product.save", err, nil)
		if errors.Is(err, domain.ErrInvalidInput) {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Message != "" {
				ctl.Err = apiErr.Message
			}
			return h.page(c, fiber.StatusBadRequest, ctl)
		}
		return h.page(c, fiber.StatusBadGateway, ctl)
	}
	applog.Audit(c, "dashboard.product.save", map[string]any{"name": form.Name})
	return c.Redirect("/")
}

func (h *DashboardHandler) DeleteProduct(c *fiber.Ctx) error {
	ctl := dashboard.NewController(h.API)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	if err := ctl.Delete(c.UserContext(), id); err != nil {
		applog.Error(c, "dashboard.product.delete", err, map[string]any{"id": id})
		_ = ctl.Load(c.UserContext())
		ctl.Err = dashboard.MsgDeleteProduct
		return h.page(c, fiber.StatusBadGateway, ctl)
	}
	applog.Audit(c, "dashboard.product.delete", map[string]any{"id": id})
	return c.Redirect("/")
}

func (h *DashboardHandler) CreateCategory(c *fiber.Ctx) error {
	ctl := dashboard.NewController(h.API)
	if err := ctl.CreateCategory(c.UserContext(), c.FormValue("name")); err != nil {
		applog.Error(c, "dashboard.category.create", err, nil)
		_ = ctl.Load(c.UserContext())
		ctl.Err = dashboard.MsgCreateCategory
		return h.page(c, fiber.StatusBadGateway, ctl)
	}
	applog.Audit(c, "dashboard.category.create", map[string]any{"name": c.FormValue("name")})
	return c.Redirect("/")
}

func (h *DashboardHandler) page(c *fiber.Ctx, status int, ctl *dashboard.Controller) error {
	products := ctl.Visible(c.Query("q"))
	maxQty := 0
	for _, p := range ctl.Products {
		maxQty = max(maxQty, p.Quantity)
	}
	var catID int64
	if ctl.Filter.CategoryID != nil {
		catID = *ctl.Filter.CategoryID
	}
	c.Status(status)
	return render(c, "dashboard", fiber.Map{
		"Stats":      ctl.Stats(),
		"Series":     dashboard.StockSeries(ctl.Products),
		"Split":      dashboard.LowStockSplit(ctl.Products),
		"MaxQty":     maxQty,
		"Products":   products,
		"Categories": ctl.Categories,
		"CategoryID": catID,
		"Query":      c.Query("q"),
		"Editing":    ctl.Editing,
		"ShowForm":   ctl.ShowForm,
		"Err":        ctl.Err,
	})
}

// productForm parses the submitted fields. The API validates again; this
// only turns text into typed values.
func productForm(c *fiber.Ctx) (client.ProductForm, error) {
	f, err := validate.Product(func(k string) string { return c.FormValue(k) }, validate.ProductOptions{})
	if err != nil {
		return client.ProductForm{}, err
	}
	return client.ProductForm{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Quantity:    f.Quantity,
		CategoryID:  f.CategoryID,
	}, nil
}

// formUpload opens the optional "image" part for forwarding.
func formUpload(c *fiber.Ctx) (*client.Upload, func(), error) {
	fh := formImage(c)
	if fh == nil || fh.Filename == "" {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &client.Upload{Filename: fh.Filename, ContentType: contentType(fh), Body: f}, func() { _ = f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
