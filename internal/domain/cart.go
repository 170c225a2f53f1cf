package domain

import "github.com/shopspring/decimal"

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Clamp restricts a quantity to [MinQuantity, MaxQuantity].
func Clamp(n int) int {
	if n < MinQuantity {
		return MinQuantity
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

func cloneCart(cart []CartLineItem) []CartLineItem {
	out := make([]CartLineItem, len(cart))
	copy(out, cart)
	return out
}

func indexOf(cart []CartLineItem, id ProductID) int {
	for i := range cart {
		if cart[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToCart merges qty into the existing line for p, or appends a new line.
// qty is clamped first, so adding never lowers a quantity.
func AddToCart(cart []CartLineItem, p Product, qty int) []CartLineItem {
	qty = Clamp(qty)
	out := cloneCart(cart)
	if i := indexOf(out, p.ID); i >= 0 {
		out[i].Quantity = Clamp(out[i].Quantity + qty)
		return out
	}
	return append(out, CartLineItem{Product: p.Snapshot(), Quantity: qty})
}

// NormalizeCart restores the cart invariants on content read from storage:
// lines without an id are dropped, repeated ids fold into the first line
// with their quantities summed, and every quantity is clamped.
func NormalizeCart(cart []CartLineItem) []CartLineItem {
	out := make([]CartLineItem, 0, len(cart))
	pos := make(map[ProductID]int, len(cart))
	for _, it := range cart {
		if it.ID == "" {
			continue
		}
		q := Clamp(it.Quantity)
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity = Clamp(out[i].Quantity + q)
			continue
		}
		pos[it.ID] = len(out)
		it.Quantity = q
		out = append(out, it)
	}
	return out
}

func RemoveFromCart(cart []CartLineItem, id ProductID) []CartLineItem {
	out := make([]CartLineItem, 0, len(cart))
	for _, it := range cart {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func SetQuantity(cart []CartLineItem, id ProductID, n int) []CartLineItem {
	out := cloneCart(cart)
	if i := indexOf(out, id); i >= 0 {
		out[i].Quantity = Clamp(n)
	}
	return out
}

// AdjustQuantity shifts the quantity by delta; decrements hold at 1.
func AdjustQuantity(cart []CartLineItem, id ProductID, delta int) []CartLineItem {
	i := indexOf(cart, id)
	if i < 0 {
		return cloneCart(cart)
	}
	return SetQuantity(cart, id, cart[i].Quantity+delta)
}

func ClearCart() []CartLineItem { return []CartLineItem{} }

// UnitPrice is the per-unit amount charged under policy.
func UnitPrice(p Product, policy PricingPolicy) decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if policy != DiscountedPrice || p.Discount <= 0 {
		return price
	}
	off := decimal.NewFromFloat(p.Discount).Div(decimal.NewFromInt(100))
	return price.Mul(decimal.NewFromInt(1).Sub(off))
}

func CartTotal(cart []CartLineItem, policy PricingPolicy) decimal.Decimal {
	total := decimal.Zero
	for _, it := range cart {
		total = total.Add(UnitPrice(it.Product, policy).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

func ItemCount(cart []CartLineItem) int {
	n := 0
	for _, it := range cart {
		n += it.Quantity
	}
	return n
}
