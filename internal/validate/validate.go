package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
)

const maxName = 255

// maxPrice is the largest value a NUMERIC(12,2) price column holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

// ProductOptions toggles the rules that differ between deployments.
type ProductOptions struct {
	RequireCategory bool
}

// Product turns raw form values into validated fields. Checks run in order
// name, category, price, quantity and stop at the first failure. Prices carry
// at most two decimal places and stay within maxPrice.
func Product(form func(key string) string, opts ProductOptions) (domain.ProductFields, error) {
	var f domain.ProductFields

	name, err := Name(form("name"))
	if err != nil {
		return f, err
	}
	f.Name = name

	rawCat := strings.TrimSpace(form("category_id"))
	switch {
	case rawCat == "" && opts.RequireCategory:
		return f, domain.Invalid("category_id", "Category is required.")
	case rawCat != "":
		id, ok := ID(rawCat)
		if !ok {
			if opts.RequireCategory {
				return f, domain.Invalid("category_id", "Category is required.")
			}
			return f, domain.Invalid("category_id", "Category must be a valid id.")
		}
		f.CategoryID = &id
	}

	price, err := decimal.NewFromString(strings.TrimSpace(form("price")))
	if err != nil || price.IsNegative() || price.GreaterThan(maxPrice) || !price.Equal(price.Round(2)) {
		return f, domain.Invalid("price", "Price must be a valid non-negative number.")
	}
	f.Price = price

	qty, err := strconv.Atoi(strings.TrimSpace(form("quantity")))
	if err != nil || qty < 0 {
		return f, domain.Invalid("quantity", "Quantity must be a valid non-negative integer.")
	}
	f.Quantity = qty

	f.Description = strings.TrimSpace(form("description"))
	return f, nil
}

// Name trims a product or category name and enforces 1..255 characters.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.Invalid("name", "Name is required.")
	}
	if utf8.RuneCountInString(s) > maxName {
		return "", domain.Invalid("name", "Name must be at most 255 characters.")
	}
	return s, nil
}

// ID validates a positive integer resource identifier.
func ID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

// OptionalID parses an optional filter value; "" yields nil.
func OptionalID(field, s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, ok := ID(s)
	if !ok {
		return nil, domain.Invalid(field, field+" must be a positive integer.")
	}
	return &id, nil
}
