package handlers

import (
	"makershelf/internal/config"
	"makershelf/internal/repos"
	"makershelf/internal/services"
	"makershelf/internal/storage"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler *ProductHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, files storage.Store) *Deps {
	makerRepo := repos.NewMakerRepo(db)
	prodRepo := repos.NewProductRepo(db)

	catalogSvc := services.NewCatalogService(makerRepo, prodRepo)
	productSvc := services.NewProductService(db, makerRepo, prodRepo, files)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Products: productSvc},
	}
}
