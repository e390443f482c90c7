package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
)

func mockDB(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, driver), mock
}

func TestPostgresUpsertFallsBackToUpdate(t *testing.T) {
	db, mock := mockDB(t, "postgres")
	repo := NewCategoryRepo(db)

	mock.ExpectQuery(`INSERT INTO categories \(name\) VALUES \(\$1\) RETURNING id`).
		WithArgs("Electronics").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(`UPDATE categories SET name = \$1 WHERE name = \$2`).
		WithArgs("Electronics", "Electronics").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, name FROM categories WHERE name = \$1`).
		WithArgs("Electronics").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Electronics"))

	c, err := repo.Upsert(context.Background(), "Electronics")
	require.NoError(t, err)
	assert.Equal(t, domain.Category{ID: 1, Name: "Electronics"}, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductCreateUsesReturning(t *testing.T) {
	db, mock := mockDB(t, "postgres")
	repo := NewProductRepo(db)
	cat := int64(1)
	f := domain.ProductFields{Name: "Headphones", Price: decimal.RequireFromString("49.99"), Quantity: 3, CategoryID: &cat}

	mock.ExpectQuery(`INSERT INTO products .* VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\) RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT p.id, .* FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE p.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "image", "quantity", "category_id", "category"}).
			AddRow(7, "Headphones", "", "49.99", "/uploads/x.png", 3, 1, "Electronics"))

	p, err := repo.Create(context.Background(), f, "/uploads/x.png")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Electronics", p.CategoryName())
	assert.True(t, p.Price.Equal(f.Price))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDeleteMissingIsNotFound(t *testing.T) {
	db, mock := mockDB(t, "mysql")
	repo := NewProductRepo(db)

	mock.ExpectExec(`DELETE FROM products WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreFailureIsWrapped(t *testing.T) {
	db, mock := mockDB(t, "postgres")
	repo := NewCategoryRepo(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT id, name FROM categories ORDER BY name ASC`).WillReturnError(boom)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, boom)
}

func TestTranslateDriverErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"pq unique", &pq.Error{Code: "23505"}, domain.ErrConflict},
		{"pq fk", &pq.Error{Code: "23503"}, domain.ErrInvalidInput},
		{"mysql unique", &mysql.MySQLError{Number: 1062}, domain.ErrConflict},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, domain.ErrInvalidInput},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: categories.name (2067)"), domain.ErrConflict},
		{"other", errors.New("disk full"), domain.ErrStoreFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translate("op", tc.err), tc.want)
		})
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("file:x.db?cache=shared"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", sqliteDSN("x.db?_pragma=foreign_keys(0)"))
}
