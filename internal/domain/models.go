package domain

import "github.com/shopspring/decimal"

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 5

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       string          `db:"image" json:"image"`
	Quantity    int             `db:"quantity" json:"quantity"`
	CategoryID  *int64          `db:"category_id" json:"category_id"`
	Category    *string         `db:"category" json:"category"` // joined, read-only
}

// ProductFilter narrows product listings. A nil CategoryID lists everything.
type ProductFilter struct {
	CategoryID *int64
}

// ProductFields is the validated, persistable part of a product.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	CategoryID  *int64
}

type StockStatus string

const (
	InStock    StockStatus = "IN_STOCK"
	LowStock   StockStatus = "LOW_STOCK"
	OutOfStock StockStatus = "OUT_OF_STOCK"
)

// StatusFor converts qty into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func StatusFor(qty int) StockStatus {
	switch {
	case qty >= LowStockThreshold:
		return InStock
	case qty > 0:
		return LowStock
	}
	return OutOfStock
}

// IsLowStock reports the dashboard "low" classification (quantity < 5).
func (p Product) IsLowStock() bool { return p.Quantity < LowStockThreshold }

// Value is price × quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// CategoryName returns the joined category name or "" when uncategorized.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// DeletePolicy decides what happens to products whose category is deleted.
type DeletePolicy string

const (
	DeleteNullify  DeletePolicy = "nullify"  // products keep existing, uncategorized
	DeleteRestrict DeletePolicy = "restrict" // delete refused while referenced
	DeleteCascade  DeletePolicy = "cascade"  // referencing products are deleted too
)
