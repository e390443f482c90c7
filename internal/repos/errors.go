package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"stockroom/internal/domain"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451 || myErr.Number == 1452
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// translate maps driver errors onto the domain taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, domain.Invalid("category_id", "Category does not exist."))
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreFailure, err)
}

// insertOrUpdate runs insert and, when it hits a unique violation, update.
func insertOrUpdate(insert, update func() error) error {
	err := insert()
	if err == nil || !isUniqueViolation(err) {
		return err
	}
	return update()
}
