package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ProductID identifies a catalog product. Catalogs may key products by
// integer or string; both decode into the same string form.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

type Product struct {
	ID          ProductID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"` // percent, 0-100
	Rating      float64   `json:"rating"`   // 0-5
	Images      []string  `json:"images"`
	Benefits    []string  `json:"benefits"`
}

// Snapshot copies p so later catalog edits do not leak into stored
// cart or wishlist entries.
func (p Product) Snapshot() Product {
	s := p
	s.Images = append([]string(nil), p.Images...)
	s.Benefits = append([]string(nil), p.Benefits...)
	return s
}

// CartLineItem encodes flat: product fields plus quantity.
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

type WishlistEntry struct {
	Product
}

type FilterCriteria struct {
	MinPrice  float64  `json:"minPrice"`
	MaxPrice  float64  `json:"maxPrice"`
	Brands    []string `json:"brands"`
	MinRating float64  `json:"minRating"`
}

type BrandFacet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PricingPolicy selects the unit price used for cart totals.
type PricingPolicy int

const (
	ListPrice PricingPolicy = iota
	DiscountedPrice
)

func (p PricingPolicy) String() string {
	if p == DiscountedPrice {
		return "discounted"
	}
	return "list"
}

func ParsePricingPolicy(s string) (PricingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return ListPrice, nil
	case "discounted":
		return DiscountedPrice, nil
	}
	return ListPrice, fmt.Errorf("unknown pricing policy %q", s)
}
