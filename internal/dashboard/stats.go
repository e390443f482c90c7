package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
)

// Stats is the aggregate row shown above the product table.
type Stats struct {
	TotalProducts int             `json:"total_products"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStock      int             `json:"low_stock"`
	Healthy       int             `json:"healthy"`
	AveragePrice  decimal.Decimal `json:"average_price"`
}

// Compute derives Stats from the full product list. Average price is zero
// for an empty list.
func Compute(products []domain.Product) Stats {
	s := Stats{TotalProducts: len(products), TotalValue: decimal.Zero, AveragePrice: decimal.Zero}
	sum := decimal.Zero
	for _, p := range products {
		s.TotalValue = s.TotalValue.Add(p.Value())
		sum = sum.Add(p.Price)
		if p.IsLowStock() {
			s.LowStock++
		}
	}
	s.Healthy = max(len(products)-s.LowStock, 0)
	if len(products) > 0 {
		s.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(products))))
	}
	return s
}

// FilterByName keeps products whose name contains term, ignoring case and
// surrounding space. An empty term returns products unchanged.
func FilterByName(products []domain.Product, term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

type StockPoint struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StockSeries is the per-product quantity bar data.
func StockSeries(products []domain.Product) []StockPoint {
	out := make([]StockPoint, 0, len(products))
	for _, p := range products {
		out = append(out, StockPoint{Name: p.Name, Quantity: p.Quantity})
	}
	return out
}

type Split struct {
	Low int `json:"low"`
	OK  int `json:"ok"`
}

// LowStockSplit is the low versus healthy pie data.
func LowStockSplit(products []domain.Product) Split {
	s := Compute(products)
	return Split{Low: s.LowStock, OK: s.Healthy}
}
