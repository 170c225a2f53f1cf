package services

import (
	"context"

	"greenleaf/internal/domain"
)

// ProductSource is the read-only catalog.
type ProductSource interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id domain.ProductID) (domain.Product, error)
}

type CatalogService struct {
	Prods ProductSource
}

func NewCatalogService(prods ProductSource) *CatalogService {
	return &CatalogService{Prods: prods}
}

// FilterMeta is what a filter panel needs to draw itself.
type FilterMeta struct {
	MinPrice float64               `json:"minPrice"`
	MaxPrice float64               `json:"maxPrice"`
	Brands   []domain.BrandFacet   `json:"brands"`
	Ratings  []int                 `json:"ratings"`
	Defaults domain.FilterCriteria `json:"defaults"`
}

// List narrows the catalog by search text, then by criteria. A nil
// criteria means no filtering.
func (s *CatalogService) List(ctx context.Context, q string, c *domain.FilterCriteria) ([]domain.Product, error) {
	all, err := s.Prods.List(ctx)
	if err != nil {
		return nil, err
	}
	found := domain.SearchProducts(all, q)
	if c == nil {
		return found, nil
	}
	return domain.FilterProducts(found, *c), nil
}

func (s *CatalogService) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, productErr(err)
	}
	return p, nil
}

func (s *CatalogService) Filters(ctx context.Context) (FilterMeta, error) {
	all, err := s.Prods.List(ctx)
	if err != nil {
		return FilterMeta{}, err
	}
	_, hi := domain.PriceBounds(all)
	return FilterMeta{
		MinPrice: 0,
		MaxPrice: hi,
		Brands:   domain.BrandFacets(all),
		Ratings:  []int{5, 4, 3, 2, 1},
		Defaults: domain.DefaultCriteria(all),
	}, nil
}

func (s *CatalogService) Suggest(q string) []string {
	return domain.Suggestions(q)
}

// Related picks up to n other products, same category first.
func (s *CatalogService) Related(ctx context.Context, p domain.Product, n int) ([]domain.Product, error) {
	all, err := s.Prods.List(ctx)
	if err != nil {
		return nil, err
	}
	same := make([]domain.Product, 0, n)
	rest := make([]domain.Product, 0, n)
	for _, x := range all {
		if x.ID == p.ID {
			continue
		}
		if x.Category == p.Category {
			same = append(same, x)
		} else {
			rest = append(rest, x)
		}
	}
	out := append(same, rest...)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
