package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/config"
	"stockroom/internal/repos"
	"stockroom/internal/services"
	"stockroom/internal/storage"
	"stockroom/internal/validate"
)

type Deps struct {
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler

	Validate fiber.Handler
	Auth     fiber.Handler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store storage.Store) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)

	catSvc := services.NewCategoryService(catRepo, cfg.CategoryDeletePolicy)
	prodSvc := services.NewProductService(prodRepo, storage.NewUploader(store, cfg.UploadMaxBytes))

	return &Deps{
		CategoryHandler:  &CategoryHandler{Categories: catSvc},
		ProductHandler:   &ProductHandler{Products: prodSvc},
		InventoryHandler: &InventoryHandler{Products: prodSvc},
		Validate:         ValidateProduct(validate.ProductOptions{RequireCategory: cfg.RequireCategory}),
		Auth:             RequireToken(cfg.APITokenHash),
	}
}
