package services

import (
	"context"

	"libris/internal/domain"
	"libris/internal/repos"
)

const (
	StatusInStock    = "IN_STOCK"
	StatusLowStock   = "LOW_STOCK"
	StatusOutOfStock = "OUT_OF_STOCK"

	lowStockThreshold = 5
)

type InventoryService struct {
	Inv   *repos.InventoryRepo
	Loans *repos.LoanRepo
}

func NewInventoryService(inv *repos.InventoryRepo, loans *repos.LoanRepo) *InventoryService {
	return &InventoryService{Inv: inv, Loans: loans}
}

// CheckAvailability converts stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, bookID string) (domain.Availability, error) {
	stock, err := s.Inv.Stock(ctx, nil, bookID)
	if err != nil {
		return domain.Availability{}, err
	}
	open, err := s.Loans.CountOpenByBook(ctx, bookID)
	if err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{BookID: bookID, Status: stockStatus(stock), Stock: stock, OpenLoans: open}, nil
}

// Overview lists stock and open loans for every book (admin view).
func (s *InventoryService) Overview(ctx context.Context) ([]repos.InventoryRow, error) {
	return s.Inv.ListAll(ctx)
}

func stockStatus(stock int) string {
	switch {
	case stock >= lowStockThreshold:
		return StatusInStock
	case stock > 0:
		return StatusLowStock
	default:
		return StatusOutOfStock
	}
}
