package repos

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type ProductRepo struct {
	db *sqlx.DB
	d  dialect
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db, d: dialectOf(db)} }

func (r *ProductRepo) selectJoined() sq.SelectBuilder {
	return r.d.sql().
		Select("p.id", "p.name", "p.description", "p.price", "p.image", "p.quantity", "p.category_id", "c.name AS category").
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id")
}

// List returns products with their category name, ordered by id.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	b := r.selectJoined()
	if f.CategoryID != nil {
		b = b.Where(sq.Eq{"p.category_id": *f.CategoryID})
	}
	q, args, err := b.OrderBy("p.id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, translate("product.list", err)
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	q, args, err := r.selectJoined().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return domain.Product{}, err
	}
	var p domain.Product
	if err := r.db.GetContext(ctx, &p, q, args...); err != nil {
		return domain.Product{}, translate("product.get", err)
	}
	return p, nil
}

// Image returns the stored image of product id; ErrNotFound when absent.
func (r *ProductRepo) Image(ctx context.Context, id int64) (string, error) {
	q, args, err := r.d.sql().Select("image").From("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return "", err
	}
	var img string
	if err := r.db.GetContext(ctx, &img, q, args...); err != nil {
		return "", translate("product.image", err)
	}
	return img, nil
}

func (r *ProductRepo) Create(ctx context.Context, f domain.ProductFields, image string) (domain.Product, error) {
	ins := r.d.sql().Insert("products").
		Columns("name", "description", "price", "image", "quantity", "category_id").
		Values(f.Name, f.Description, f.Price, image, f.Quantity, f.CategoryID)
	id, err := insertID(ctx, r.db, r.d, ins)
	if err != nil {
		return domain.Product{}, translate("product.create", err)
	}
	return r.Get(ctx, id)
}

// Update overwrites every field of product id. Zero matched rows is reported
// as ErrNotFound (the row may have been deleted since it was looked up).
func (r *ProductRepo) Update(ctx context.Context, id int64, f domain.ProductFields, image string) (domain.Product, error) {
	upd := r.d.sql().Update("products").
		Set("name", f.Name).
		Set("description", f.Description).
		Set("price", f.Price).
		Set("image", image).
		Set("quantity", f.Quantity).
		Set("category_id", f.CategoryID).
		Where(sq.Eq{"id": id})
	n, err := execAffected(ctx, r.db, upd)
	if err != nil {
		return domain.Product{}, translate("product.update", err)
	}
	if n == 0 {
		return domain.Product{}, fmt.Errorf("product.update: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	n, err := execAffected(ctx, r.db, r.d.sql().Delete("products").Where(sq.Eq{"id": id}))
	if err != nil {
		return translate("product.delete", err)
	}
	if n == 0 {
		return fmt.Errorf("product.delete: %w", domain.ErrNotFound)
	}
	return nil
}
