package services

import (
	"context"
	"errors"

	"libris/internal/domain"
	"libris/internal/repos"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrBadPaging = errors.New("page and limit must be positive")

// HistoryService is the read side of the ledger. It never writes.
type HistoryService struct {
	Loans *repos.LoanRepo
}

func NewHistoryService(loans *repos.LoanRepo) *HistoryService {
	return &HistoryService{Loans: loans}
}

// History returns one page of p's loans, newest first. page/limit of 0 take
// the defaults; negative values are rejected; limit is capped at MaxLimit.
func (s *HistoryService) History(ctx context.Context, p domain.Principal, page, limit int) (domain.LoanPage, error) {
	if p.UserID == "" {
		return domain.LoanPage{}, domain.ErrUnauthorized
	}
	if page < 0 || limit < 0 {
		return domain.LoanPage{}, ErrBadPaging
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	total, err := s.Loans.CountByUser(ctx, p.UserID)
	if err != nil {
		return domain.LoanPage{}, err
	}
	records, err := s.Loans.ListByUser(ctx, p.UserID, limit, (page-1)*limit)
	if err != nil {
		return domain.LoanPage{}, err
	}
	return domain.LoanPage{Records: records, Pagination: domain.NewPagination(page, limit, total)}, nil
}
