package repos

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type CategoryRepo struct {
	db *sqlx.DB
	d  dialect
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db, d: dialectOf(db)} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	q, args, err := r.d.sql().Select("id", "name").From("categories").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, err
	}
	out := []domain.Category{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, translate("category.list", err)
	}
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	return r.getWhere(ctx, "category.get", sq.Eq{"id": id})
}

func (r *CategoryRepo) getWhere(ctx context.Context, op string, where sq.Eq) (domain.Category, error) {
	q, args, err := r.d.sql().Select("id", "name").From("categories").Where(where).ToSql()
	if err != nil {
		return domain.Category{}, err
	}
	var c domain.Category
	if err := r.db.GetContext(ctx, &c, q, args...); err != nil {
		return domain.Category{}, translate(op, err)
	}
	return c, nil
}

// Upsert inserts name and, when it already exists, updates that row in place.
// Either way the stored row is returned.
func (r *CategoryRepo) Upsert(ctx context.Context, name string) (domain.Category, error) {
	err := insertOrUpdate(
		func() error {
			_, err := insertID(ctx, r.db, r.d, r.d.sql().Insert("categories").Columns("name").Values(name))
			return err
		},
		func() error {
			_, err := execAffected(ctx, r.db, r.d.sql().Update("categories").Set("name", name).Where(sq.Eq{"name": name}))
			return err
		},
	)
	if err != nil {
		return domain.Category{}, translate("category.upsert", err)
	}
	return r.getWhere(ctx, "category.upsert", sq.Eq{"name": name})
}

func (r *CategoryRepo) Rename(ctx context.Context, id int64, name string) (domain.Category, error) {
	n, err := execAffected(ctx, r.db, r.d.sql().Update("categories").Set("name", name).Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Category{}, translate("category.rename", err)
	}
	if n == 0 {
		return domain.Category{}, fmt.Errorf("category.rename: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, id)
}

// Delete removes a category, applying policy to the products that reference
// it. The whole operation runs in one transaction.
func (r *CategoryRepo) Delete(ctx context.Context, id int64, policy domain.DeletePolicy) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translate("category.delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := countWhere(ctx, tx, r.d, "categories", sq.Eq{"id": id}, &exists); err != nil {
		return translate("category.delete", err)
	}
	if exists == 0 {
		return fmt.Errorf("category.delete: %w", domain.ErrNotFound)
	}

	refs := sq.Eq{"category_id": id}
	switch policy {
	case domain.DeleteRestrict:
		var n int
		if err := countWhere(ctx, tx, r.d, "products", refs, &n); err != nil {
			return translate("category.delete", err)
		}
		if n > 0 {
			return fmt.Errorf("category.delete: %d products reference it: %w", n, domain.ErrConflict)
		}
	case domain.DeleteCascade:
		if _, err := execAffected(ctx, tx, r.d.sql().Delete("products").Where(refs)); err != nil {
			return translate("category.delete", err)
		}
	default:
		if _, err := execAffected(ctx, tx, r.d.sql().Update("products").Set("category_id", nil).Where(refs)); err != nil {
			return translate("category.delete", err)
		}
	}

	if _, err := execAffected(ctx, tx, r.d.sql().Delete("categories").Where(sq.Eq{"id": id})); err != nil {
		return translate("category.delete", err)
	}
	return translate("category.delete", tx.Commit())
}

func countWhere(ctx context.Context, q sqlx.QueryerContext, d dialect, table string, where sq.Eq, dest *int) error {
	query, args, err := d.sql().Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}
