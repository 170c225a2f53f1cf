package domain

func InWishlist(wishlist []WishlistEntry, id ProductID) bool {
	for _, e := range wishlist {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ToggleWishlist flips membership of p and reports whether p is now saved.
func ToggleWishlist(wishlist []WishlistEntry, p Product) ([]WishlistEntry, bool) {
	if InWishlist(wishlist, p.ID) {
		out := make([]WishlistEntry, 0, len(wishlist))
		for _, e := range wishlist {
			if e.ID != p.ID {
				out = append(out, e)
			}
		}
		return out, false
	}
	out := make([]WishlistEntry, len(wishlist), len(wishlist)+1)
	copy(out, wishlist)
	return append(out, WishlistEntry{Product: p.Snapshot()}), true
}

// NormalizeWishlist drops entries without an id and keeps the first of
// any repeated id.
func NormalizeWishlist(wishlist []WishlistEntry) []WishlistEntry {
	out := make([]WishlistEntry, 0, len(wishlist))
	seen := make(map[ProductID]bool, len(wishlist))
	for _, e := range wishlist {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}
