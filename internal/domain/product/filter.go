package product

import "strings"

// AllCategories is the category selector that matches every product.
const AllCategories = "All"

// Filter narrows a catalog listing the way the storefront browser does.
type Filter struct {
	// Search matches product names case- and whitespace-insensitively.
	Search      string
	InStockOnly bool
	// Category selects a single category; empty or AllCategories matches all.
	Category string
}

// Match reports whether p passes every criterion of the filter.
func (f Filter) Match(p Product) bool {
	if f.InStockOnly && !p.Stock {
		return false
	}
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	return strings.Contains(NameKey(p.Name), NameKey(f.Search))
}

// Apply returns the products matching the filter, preserving order.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns AllCategories followed by every distinct category in
// first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Lookup finds a product by name using the same normalization as search,
// so "cashew nuts" resolves "Cashew Nuts".
func Lookup(products []Product, name string) (Product, bool) {
	for _, p := range products {
		if SameName(p.Name, name) {
			return p, true
		}
	}
	return Product{}, false
}

// SameName reports whether two names are equal ignoring case and whitespace.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// NameKey folds a product name to the form used for search and matching.
func NameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
