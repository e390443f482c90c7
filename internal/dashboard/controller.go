package dashboard

import (
	"context"

	"stockroom/internal/client"
	"stockroom/internal/domain"
)

// API is the part of the client the dashboard needs.
type API interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, form client.ProductForm, img *client.Upload) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, form client.ProductForm, img *client.Upload) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
}

const (
	MsgLoadProducts   = "Failed to load products"
	MsgSaveProduct    = "Failed to save product"
	MsgDeleteProduct  = "Failed to delete product"
	MsgLoadCategories = "Failed to load categories"
	MsgCreateCategory = "Failed to create category"
)

// Controller holds the dashboard view state. Every mutation re-fetches the
// product list instead of patching it locally.
type Controller struct {
	API    API
	Filter domain.ProductFilter

	Products   []domain.Product
	Categories []domain.Category
	Editing    *domain.Product
	ShowForm   bool
	Err        string
}

func NewController(api API) *Controller {
	return &Controller{API: api}
}

// Load fetches products and categories. A successful product load clears
// the previous error.
func (c *Controller) Load(ctx context.Context) error {
	ps, err := c.API.ListProducts(ctx, c.Filter)
	if err != nil {
		c.Err = MsgLoadProducts
		return err
	}
	c.Products = ps
	c.Err = ""

	cats, err := c.API.ListCategories(ctx)
	if err != nil {
		c.Err = MsgLoadCategories
		return err
	}
	c.Categories = cats
	return nil
}

// Edit selects a loaded product for editing; unknown ids select nothing.
func (c *Controller) Edit(id int64) bool {
	for i := range c.Products {
		if c.Products[i].ID == id {
			p := c.Products[i]
			c.Editing = &p
			c.ShowForm = true
			return true
		}
	}
	c.Editing = nil
	return false
}

// New opens an empty form.
func (c *Controller) New() {
	c.Editing = nil
	c.ShowForm = true
}

func (c *Controller) Close() {
	c.Editing = nil
	c.ShowForm = false
}

// Save updates the product being edited, or creates one when nothing is
// selected, then reloads and closes the form.
func (c *Controller) Save(ctx context.Context, form client.ProductForm, img *client.Upload) error {
	var err error
	if c.Editing != nil {
		_, err = c.API.UpdateProduct(ctx, c.Editing.ID, form, img)
	} else {
		_, err = c.API.CreateProduct(ctx, form, img)
	}
	if err != nil {
		c.Err = MsgSaveProduct
		return err
	}
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.Close()
	return nil
}

func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.API.DeleteProduct(ctx, id); err != nil {
		c.Err = MsgDeleteProduct
		return err
	}
	return c.Load(ctx)
}

func (c *Controller) CreateCategory(ctx context.Context, name string) error {
	if _, err := c.API.CreateCategory(ctx, name); err != nil {
		c.Err = MsgCreateCategory
		return err
	}
	return c.Load(ctx)
}

func (c *Controller) Stats() Stats { return Compute(c.Products) }

// Visible is the product list after the name search.
func (c *Controller) Visible(term string) []domain.Product {
	return FilterByName(c.Products, term)
}
