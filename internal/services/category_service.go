package services

import (
	"context"

	"stockroom/internal/domain"
	"stockroom/internal/validate"
)

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id int64) (domain.Category, error)
	Upsert(ctx context.Context, name string) (domain.Category, error)
	Rename(ctx context.Context, id int64, name string) (domain.Category, error)
	Delete(ctx context.Context, id int64, policy domain.DeletePolicy) error
}

type CategoryService struct {
	Cats   CategoryStore
	Policy domain.DeletePolicy
}

func NewCategoryService(cats CategoryStore, policy domain.DeletePolicy) *CategoryService {
	if policy == "" {
		policy = domain.DeleteNullify
	}
	return &CategoryService{Cats: cats, Policy: policy}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	return s.Cats.Get(ctx, id)
}

// Create stores name, or returns the existing row when it is already taken.
func (s *CategoryService) Create(ctx context.Context, name string) (domain.Category, error) {
	name, err := validate.Name(name)
	if err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Upsert(ctx, name)
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string) (domain.Category, error) {
	name, err := validate.Name(name)
	if err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Rename(ctx, id, name)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.Cats.Delete(ctx, id, s.Policy)
}
