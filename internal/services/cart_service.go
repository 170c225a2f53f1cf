package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	"greenleaf/internal/store"
)

type CartService struct {
	Store  *store.Adapter
	Prods  ProductSource
	Policy domain.PricingPolicy

	locks sessionLocks
}

func NewCartService(st *store.Adapter, prods ProductSource, policy domain.PricingPolicy) *CartService {
	return &CartService{Store: st, Prods: prods, Policy: policy}
}

type CartView struct {
	Items   []domain.CartLineItem `json:"items"`
	Total   decimal.Decimal       `json:"total"`
	Count   int                   `json:"count"`
	Version string                `json:"version"`
	Policy  string                `json:"pricing"`
}

func (s *CartService) view(items []domain.CartLineItem, ver store.Version) CartView {
	return CartView{
		Items:   items,
		Total:   domain.CartTotal(items, s.Policy),
		Count:   domain.ItemCount(items),
		Version: string(ver),
		Policy:  s.Policy.String(),
	}
}

// View never fails on malformed content; it reports an empty cart and
// returns the ErrCorrupt alongside so callers may log it.
func (s *CartService) View(ctx context.Context, sid string) (CartView, error) {
	items, ver, err := s.Store.LoadCart(ctx, sid)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return CartView{}, storeErr(err)
	}
	return s.view(items, ver), err
}

func (s *CartService) Add(ctx context.Context, sid string, id domain.ProductID, qty int) (CartView, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return CartView{}, productErr(err)
	}
	return s.mutate(ctx, sid, func(c []domain.CartLineItem) []domain.CartLineItem {
		return domain.AddToCart(c, p, qty)
	})
}

func (s *CartService) Remove(ctx context.Context, sid string, id domain.ProductID) (CartView, error) {
	return s.mutate(ctx, sid, func(c []domain.CartLineItem) []domain.CartLineItem {
		return domain.RemoveFromCart(c, id)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, sid string, id domain.ProductID, n int) (CartView, error) {
	return s.mutate(ctx, sid, func(c []domain.CartLineItem) []domain.CartLineItem {
		return domain.SetQuantity(c, id, n)
	})
}

func (s *CartService) Adjust(ctx context.Context, sid string, id domain.ProductID, delta int) (CartView, error) {
	return s.mutate(ctx, sid, func(c []domain.CartLineItem) []domain.CartLineItem {
		return domain.AdjustQuantity(c, id, delta)
	})
}

// Checkout empties the cart. It skips the read, so it also clears a
// cart whose stored content is malformed.
func (s *CartService) Checkout(ctx context.Context, sid string) (CartView, error) {
	defer s.locks.lock(sid)()
	items := domain.ClearCart()
	ver, err := s.Store.SaveCart(ctx, sid, items)
	if err != nil {
		return CartView{}, storeErr(err)
	}
	return s.view(items, ver), nil
}

// mutate is load, apply, save under the session's lock. Nothing is
// published unless the save lands.
func (s *CartService) mutate(ctx context.Context, sid string, fn func([]domain.CartLineItem) []domain.CartLineItem) (CartView, error) {
	defer s.locks.lock(sid)()
	items, _, err := s.Store.LoadCart(ctx, sid)
	if err != nil {
		return CartView{}, storeErr(err)
	}
	next := fn(items)
	ver, err := s.Store.SaveCart(ctx, sid, next)
	if err != nil {
		return CartView{}, storeErr(err)
	}
	return s.view(next, ver), nil
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrCorrupt):
		return apperr.StorageCorrupt("saved data could not be read", err)
	case errors.Is(err, store.ErrUnavailable):
		return apperr.StorageUnavailable("storage is unavailable, please try again", err)
	}
	return err
}
