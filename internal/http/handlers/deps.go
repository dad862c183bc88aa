package handlers

import (
	"github.com/jmoiron/sqlx"

	"libris/internal/auth"
	"libris/internal/config"
	"libris/internal/repos"
	"libris/internal/services"
)

type Deps struct {
	Auth    *services.AuthService
	Lending *services.LendingService
	History *services.HistoryService
	Catalog *services.CatalogService
	Inv     *services.InventoryService
	Outbox  *repos.OutboxRepo

	AuthHandler     *AuthHandler
	LendingHandler  *LendingHandler
	BookHandler     *BookHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	AdminHandler    *AdminHandler
	SearchHandler   *SearchHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	bookRepo := repos.NewBookRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	loanRepo := repos.NewLoanRepo(db)
	outboxRepo := repos.NewOutboxRepo(db)

	authSvc := services.NewAuthService(userRepo, auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL))
	lendingSvc := services.NewLendingService(db, bookRepo, loanRepo, invRepo, outboxRepo)
	if cfg.LendingMaxAttempts > 0 {
		lendingSvc.Retry.MaxAttempts = cfg.LendingMaxAttempts
	}
	if cfg.LendingBaseDelay > 0 {
		lendingSvc.Retry.BaseDelay = cfg.LendingBaseDelay
	}
	historySvc := services.NewHistoryService(loanRepo)
	catalogSvc := services.NewCatalogService(catRepo, bookRepo, prodRepo)
	invSvc := lendingSvc.Avail

	return &Deps{
		Auth:    authSvc,
		Lending: lendingSvc,
		History: historySvc,
		Catalog: catalogSvc,
		Inv:     invSvc,
		Outbox:  outboxRepo,

		AuthHandler:     &AuthHandler{Auth: authSvc},
		LendingHandler:  &LendingHandler{Lending: lendingSvc, History: historySvc},
		BookHandler:     &BookHandler{Catalog: catalogSvc, Inv: invSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		AdminHandler:    &AdminHandler{Inv: invSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
	}
}
