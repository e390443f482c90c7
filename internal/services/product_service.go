package services

import (
	"context"
	"mime/multipart"

	"stockroom/internal/domain"
)

type ProductStore interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Image(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, f domain.ProductFields, image string) (domain.Product, error)
	Update(ctx context.Context, id int64, f domain.ProductFields, image string) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ImageSaver stores one uploaded image and returns its URL or path.
type ImageSaver interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

type ProductService struct {
	Prods  ProductStore
	Images ImageSaver
}

func NewProductService(prods ProductStore, images ImageSaver) *ProductService {
	return &ProductService{Prods: prods, Images: images}
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return s.Prods.List(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

// Create requires an image. It is stored before the row is written; if the
// write fails the stored image stays behind.
func (s *ProductService) Create(ctx context.Context, f domain.ProductFields, image *multipart.FileHeader) (domain.Product, error) {
	if image == nil {
		return domain.Product{}, domain.Invalid("image", "Product image is required.")
	}
	loc, err := s.Images.Save(ctx, image)
	if err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Create(ctx, f, loc)
}

// Update replaces every field. Without a new image the stored one is kept.
func (s *ProductService) Update(ctx context.Context, id int64, f domain.ProductFields, image *multipart.FileHeader) (domain.Product, error) {
	loc, err := s.Prods.Image(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if image != nil {
		if loc, err = s.Images.Save(ctx, image); err != nil {
			return domain.Product{}, err
		}
	}
	return s.Prods.Update(ctx, id, f, loc)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.Prods.Delete(ctx, id)
}
