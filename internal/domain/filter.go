package domain

import "strings"

// DefaultFilterPanelThreshold is the scroll offset past which the home
// page reveals its filter panel.
const DefaultFilterPanelThreshold = 600

// FilterProducts keeps catalog order. An inverted price range matches nothing.
func FilterProducts(catalog []Product, c FilterCriteria) []Product {
	out := []Product{}
	if c.MinPrice > c.MaxPrice {
		return out
	}
	brands := make(map[string]struct{}, len(c.Brands))
	for _, b := range c.Brands {
		brands[b] = struct{}{}
	}
	for _, p := range catalog {
		if p.Price < c.MinPrice || p.Price > c.MaxPrice {
			continue
		}
		if len(brands) > 0 {
			if _, ok := brands[p.Brand]; !ok {
				continue
			}
		}
		if c.MinRating != 0 && p.Rating < c.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

func PriceBounds(catalog []Product) (lo, hi float64) {
	for i, p := range catalog {
		if i == 0 || p.Price < lo {
			lo = p.Price
		}
		if i == 0 || p.Price > hi {
			hi = p.Price
		}
	}
	return lo, hi
}

// DefaultCriteria matches the whole catalog: [0, max price], any brand, any rating.
func DefaultCriteria(catalog []Product) FilterCriteria {
	_, hi := PriceBounds(catalog)
	return FilterCriteria{MinPrice: 0, MaxPrice: hi, Brands: []string{}}
}

// BrandFacets lists brands in first-seen order with product counts.
func BrandFacets(catalog []Product) []BrandFacet {
	out := []BrandFacet{}
	pos := map[string]int{}
	for _, p := range catalog {
		if i, ok := pos[p.Brand]; ok {
			out[i].Count++
			continue
		}
		pos[p.Brand] = len(out)
		out = append(out, BrandFacet{Name: p.Brand, Count: 1})
	}
	return out
}

func SearchProducts(catalog []Product, q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return append([]Product{}, catalog...)
	}
	out := []Product{}
	for _, p := range catalog {
		hay := strings.ToLower(p.Title + "\n" + p.Description + "\n" + p.Brand + "\n" + p.Category)
		if strings.Contains(hay, q) {
			out = append(out, p)
		}
	}
	return out
}

var suggestionTerms = []string{
	"vitamins & supplements",
	"organic products",
	"natural remedies",
	"wellness products",
	"health foods",
	"fitness equipment",
	"natural solutions",
	"holistic health",
}

// Suggestions expands a partial query against the storefront vocabulary.
func Suggestions(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	lq := strings.ToLower(q)
	out := make([]string, 0, len(suggestionTerms))
	for _, term := range suggestionTerms {
		if strings.Contains(strings.ToLower(term), lq) {
			out = append(out, term)
		} else {
			out = append(out, q+" "+term)
		}
	}
	return out
}

func FilterPanelVisible(scrollY, threshold int) bool {
	return scrollY > threshold
}
