package handlers

import (
	"github.com/jmoiron/sqlx"

	"stash/internal/cache"
	"stash/internal/config"
	"stash/internal/repos"
	"stash/internal/services"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	WishlistHandler *WishlistHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, vc cache.ViewCache) *Deps {
	prodRepo := repos.NewProductRepo(db)
	colRepo := repos.NewCollectionRepo(db)

	mutSvc := services.NewCollectionService(colRepo, prodRepo, vc, cfg.StoreTimeout)
	viewSvc := services.NewViewService(colRepo, prodRepo, vc)

	return &Deps{
		ProductHandler:  &ProductHandler{Prods: prodRepo},
		CartHandler:     &CartHandler{Mut: mutSvc, Views: viewSvc},
		WishlistHandler: &WishlistHandler{Mut: mutSvc, Views: viewSvc},
	}
}
