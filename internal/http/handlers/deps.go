package handlers

import (
	"github.com/jmoiron/sqlx"

	"greenleaf/internal/config"
	"greenleaf/internal/notify"
	"greenleaf/internal/repos"
	"greenleaf/internal/services"
	"greenleaf/internal/store"
)

type Deps struct {
	PageHandler     *PageHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	WishlistHandler *WishlistHandler
	EventsHandler   *EventsHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, bus *notify.Bus) *Deps {
	prodRepo := repos.NewProductRepo(db)
	storageRepo := repos.NewStorageRepo(db)
	st := store.NewAdapter(storageRepo, bus)

	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(st, prodRepo, cfg.Pricing)
	wishSvc := services.NewWishlistService(st, prodRepo)

	layout := &Layout{Cart: cartSvc, Wish: wishSvc, Threshold: cfg.FilterPanelThreshold}

	return &Deps{
		PageHandler:     &PageHandler{Layout: layout, Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Layout: layout, Catalog: catalogSvc, Wish: wishSvc},
		CartHandler:     &CartHandler{Layout: layout},
		WishlistHandler: &WishlistHandler{Layout: layout},
		EventsHandler:   NewEventsHandler(bus),
	}
}
