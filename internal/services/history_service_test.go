package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/domain"
	"libris/internal/services"
)

func TestHistory_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 12; i++ {
		bookID := f.addBook(t, fmt.Sprintf("Volume %02d", i), 1)
		_, err := f.lending.Borrow(ctx, alice, bookID)
		require.NoError(t, err)
		ids = append(ids, bookID)
	}

	first, err := f.history.History(ctx, alice, 1, 5)
	require.NoError(t, err)
	require.Len(t, first.Records, 5)
	assert.Equal(t, domain.Pagination{
		CurrentPage: 1, TotalPages: 3, TotalRecords: 12, HasNextPage: true, HasPrevPage: false, Limit: 5,
	}, first.Pagination)
	// newest first
	assert.Equal(t, ids[11], first.Records[0].Book.ID)
	for i := 1; i < len(first.Records); i++ {
		assert.True(t, first.Records[i-1].BorrowDate.After(first.Records[i].BorrowDate))
	}

	last, err := f.history.History(ctx, alice, 3, 5)
	require.NoError(t, err)
	require.Len(t, last.Records, 2)
	assert.False(t, last.Pagination.HasNextPage)
	assert.True(t, last.Pagination.HasPrevPage)
	assert.Equal(t, ids[0], last.Records[1].Book.ID)

	beyond, err := f.history.History(ctx, alice, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, beyond.Records)
	assert.NotNil(t, beyond.Records)
}

func TestHistory_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.history.History(ctx, bob, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultPage, page.Pagination.CurrentPage)
	assert.Equal(t, services.DefaultLimit, page.Pagination.Limit)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.Empty(t, page.Records)

	page, err = f.history.History(ctx, bob, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, services.MaxLimit, page.Pagination.Limit)

	_, err = f.history.History(ctx, bob, -1, 10)
	assert.ErrorIs(t, err, services.ErrBadPaging)

	_, err = f.history.History(ctx, domain.Principal{}, 1, 10)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestHistory_ReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lending.Borrow(ctx, alice, "book-dune")
	require.NoError(t, err)
	_, err = f.lending.Return(ctx, alice, "book-dune")
	require.NoError(t, err)
	_, err = f.lending.Borrow(ctx, alice, "book-gopl")
	require.NoError(t, err)

	a, err := f.history.History(ctx, alice, 1, 10)
	require.NoError(t, err)
	b, err := f.history.History(ctx, alice, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.Len(t, a.Records, 2)
	assert.Equal(t, domain.LoanBorrowed, a.Records[0].Status)
	assert.Equal(t, domain.LoanReturned, a.Records[1].Status)
	assert.NotNil(t, a.Records[1].ReturnDate)
	assert.Equal(t, 3, f.stock(t, "book-dune"))
}
