package repos

import (
	"context"
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect captures the few places where the supported stores disagree.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	returning   bool // INSERT ... RETURNING id instead of LastInsertId
	schema      []string
}

var dialects = map[string]dialect{
	"sqlite": {
		name:        "sqlite",
		placeholder: sq.Question,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
)`,
			`CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  category_id INTEGER REFERENCES categories(id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
		},
	},
	"postgres": {
		name:        "postgres",
		placeholder: sq.Dollar,
		returning:   true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS categories(
  id SERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
)`,
			`CREATE TABLE IF NOT EXISTS products(
  id SERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  category_id INTEGER REFERENCES categories(id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
		},
	},
	"mysql": {
		name:        "mysql",
		placeholder: sq.Question,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS categories(
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL UNIQUE
)`,
			`CREATE TABLE IF NOT EXISTS products(
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  description TEXT NOT NULL,
  price DECIMAL(12,2) NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL,
  quantity INT NOT NULL CHECK (quantity >= 0),
  category_id BIGINT NULL,
  INDEX idx_products_category (category_id),
  FOREIGN KEY (category_id) REFERENCES categories(id)
)`,
		},
	},
}

func dialectOf(db *sqlx.DB) dialect {
	if d, ok := dialects[db.DriverName()]; ok {
		return d
	}
	return dialects["sqlite"]
}

func (d dialect) sql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// OpenDB connects to the configured store, creates the schema and optionally
// seeds demo rows into an empty store.
func OpenDB(driver, dsn string, seed bool) (*sqlx.DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if driver == "mysql" {
		// UPDATE must report matched rows, not changed rows, for 404 detection.
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		mc.ClientFoundRows = true
		dsn = mc.FormatDSN()
	}

	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// :memory: databases live and die with their connection.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db, d); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(context.Background(), db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// sqliteDSN asks the driver to enable foreign keys on every new connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func ensureSchema(db *sqlx.DB, d dialect) error {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema (%s): %w", d.name, err)
		}
	}
	return nil
}

// seedIfEmpty inserts demo categories/products when no category exists yet.
func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products")

	d := dialectOf(db)
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cats := map[string]int64{}
	for _, name := range []string{"Electronics", "Office Supplies", "Furniture"} {
		id, err := insertID(ctx, tx, d, d.sql().Insert("categories").Columns("name").Values(name))
		if err != nil {
			return err
		}
		cats[name] = id
	}

	products := []struct {
		name, desc, price, cat string
		qty                    int
	}{
		{"Headphones", "Over-ear, wired", "49.99", "Electronics", 3},
		{"USB-C Hub", "7-in-1 adapter", "29.90", "Electronics", 12},
		{"Stapler", "Full strip, 20 sheets", "8.50", "Office Supplies", 40},
		{"Desk Lamp", "LED, adjustable arm", "24.00", "Furniture", 4},
	}
	for _, p := range products {
		ins := d.sql().Insert("products").
			Columns("name", "description", "price", "image", "quantity", "category_id").
			Values(p.name, p.desc, p.price, "", p.qty, cats[p.cat])
		if _, err := insertID(ctx, tx, d, ins); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// insertID runs an INSERT and returns the generated id.
func insertID(ctx context.Context, db sqlx.ExtContext, d dialect, b sq.InsertBuilder) (int64, error) {
	if d.returning {
		q, args, err := b.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := sqlx.GetContext(ctx, db, &id, q, args...); err != nil {
			return 0, err
		}
		return id, nil
	}
	q, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// execAffected runs a statement and returns the number of affected rows.
func execAffected(ctx context.Context, db sqlx.ExecerContext, b sq.Sqlizer) (int64, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
