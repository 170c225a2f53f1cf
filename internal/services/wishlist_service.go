package services

import (
	"context"
	"database/sql"
	"errors"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	"greenleaf/internal/store"
)

type WishlistService struct {
	Store *store.Adapter
	Prods ProductSource

	locks sessionLocks
}

func NewWishlistService(st *store.Adapter, prods ProductSource) *WishlistService {
	return &WishlistService{Store: st, Prods: prods}
}

// List hides malformed content behind an empty list, returning ErrCorrupt alongside.
func (s *WishlistService) List(ctx context.Context, sid string) ([]domain.WishlistEntry, error) {
	items, _, err := s.Store.LoadWishlist(ctx, sid)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, storeErr(err)
	}
	return items, err
}

func (s *WishlistService) Contains(ctx context.Context, sid string, id domain.ProductID) bool {
	items, _, _ := s.Store.LoadWishlist(ctx, sid)
	return domain.InWishlist(items, id)
}

// Toggle reports whether the product is saved after the call.
func (s *WishlistService) Toggle(ctx context.Context, sid string, id domain.ProductID) (bool, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return false, productErr(err)
	}
	defer s.locks.lock(sid)()
	items, _, err := s.Store.LoadWishlist(ctx, sid)
	if err != nil {
		return false, storeErr(err)
	}
	next, in := domain.ToggleWishlist(items, p)
	if _, err := s.Store.SaveWishlist(ctx, sid, next); err != nil {
		return false, storeErr(err)
	}
	return in, nil
}

func productErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("product", err)
	}
	return err
}
