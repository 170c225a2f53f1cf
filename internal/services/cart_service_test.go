package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	"greenleaf/internal/notify"
	"greenleaf/internal/repos"
	"greenleaf/internal/services"
	"greenleaf/internal/store"
)

type fixture struct {
	kv      *store.MemKV
	bus     *notify.Bus
	cart    *services.CartService
	wish    *services.WishlistService
	catalog *services.CatalogService
}

func newFixture(t *testing.T, policy domain.PricingPolicy) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	prods := repos.NewProductRepo(db)
	kv := store.NewMemKV()
	bus := notify.NewBus()
	st := store.NewAdapter(kv, bus)
	return fixture{
		kv:      kv,
		bus:     bus,
		cart:    services.NewCartService(st, prods, policy),
		wish:    services.NewWishlistService(st, prods),
		catalog: services.NewCatalogService(prods),
	}
}

func TestCartFlow_AddAdjustRemoveCheckout(t *testing.T) {
	f := newFixture(t, domain.ListPrice)
	ctx := context.Background()

	var events int
	f.bus.Subscribe(notify.CartUpdated, func(e notify.Event) {
		assert.Equal(t, "sid-1", e.SessionID)
		events++
	})

	cv, err := f.cart.Add(ctx, "sid-1", "2", 1)
	require.NoError(t, err)
	cv, err = f.cart.Add(ctx, "sid-1", "2", 2)
	require.NoError(t, err)
	require.Len(t, cv.Items, 1)
	assert.Equal(t, 3, cv.Items[0].Quantity)
	assert.Equal(t, "55.50", cv.Total.StringFixed(2)) // 18.50 * 3

	cv, err = f.cart.Adjust(ctx, "sid-1", "2", -1000)
	require.NoError(t, err)
	assert.Equal(t, 1, cv.Items[0].Quantity)

	cv, err = f.cart.SetQuantity(ctx, "sid-1", "2", 150)
	require.NoError(t, err)
	assert.Equal(t, 99, cv.Items[0].Quantity)
	assert.Equal(t, 99, cv.Count)

	cv, err = f.cart.Remove(ctx, "sid-1", "2")
	require.NoError(t, err)
	assert.Empty(t, cv.Items)

	_, err = f.cart.Add(ctx, "sid-1", "1", 1)
	require.NoError(t, err)
	cv, err = f.cart.Checkout(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, cv.Items)
	assert.True(t, cv.Total.IsZero())

	view, err := f.cart.View(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 7, events)
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	f := newFixture(t, domain.ListPrice)
	_, err := f.cart.Add(context.Background(), "sid-1", "nope", 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestCartTotal_DiscountedPolicy(t *testing.T) {
	f := newFixture(t, domain.DiscountedPrice)
	cv, err := f.cart.Add(context.Background(), "sid-1", "1", 2) // 24.99 at 10% off
	require.NoError(t, err)
	assert.Equal(t, "44.98", cv.Total.StringFixed(2))
	assert.Equal(t, "discounted", cv.Policy)
}

func TestCartCorruptContent(t *testing.T) {
	f := newFixture(t, domain.ListPrice)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, "sid-1", notify.KeyCart, []byte("[{broken")))

	view, err := f.cart.View(ctx, "sid-1")
	assert.ErrorIs(t, err, store.ErrCorrupt)
	assert.Empty(t, view.Items)

	_, err = f.cart.Add(ctx, "sid-1", "1", 1)
	assert.True(t, apperr.Is(err, apperr.CodeStorageCorrupt))

	// checkout recovers the session
	_, err = f.cart.Checkout(ctx, "sid-1")
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, "sid-1", "1", 1)
	assert.NoError(t, err)
}

func TestCartSaveFailureKeepsPreviousState(t *testing.T) {
	f := newFixture(t, domain.ListPrice)
	ctx := context.Background()
	_, err := f.cart.Add(ctx, "sid-1", "1", 1)
	require.NoError(t, err)

	published := 0
	f.bus.Subscribe(notify.CartUpdated, func(notify.Event) { published++ })

	f.kv.FailWrites = errors.New("quota exceeded")
	_, err = f.cart.Add(ctx, "sid-1", "1", 5)
	assert.True(t, apperr.Is(err, apperr.CodeStorageUnavailable))
	assert.Zero(t, published)

	f.kv.FailWrites = nil
	view, err := f.cart.View(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestCartNormalizesOutOfRangeContent(t *testing.T) {
	f := newFixture(t, domain.ListPrice)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, "sid-1", "cart",
		[]byte(`[{"id":"1","price":10,"quantity":-5},{"id":"2","price":10,"quantity":500},{"id":"2","price":10,"quantity":3}]`)))

	cv, err := f.cart.View(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 100, cv.Count)
	assert.Equal(t, "1000.00", cv.Total.StringFixed(2))

	cv, err = f.cart.Add(ctx, "sid-1", "2", 1)
	require.NoError(t, err)
	require.Len(t, cv.Items, 2)
	assert.Equal(t, 1, cv.Items[0].Quantity)
	assert.Equal(t, 99, cv.Items[1].Quantity)
}
