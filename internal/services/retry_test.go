package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"libris/internal/domain"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, JitterFactor: 0.3}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastPolicy(5), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: database is locked", domain.ErrTransient)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_BusinessErrorsFailFast(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastPolicy(5), func(context.Context) error {
		calls++
		return domain.ErrOutOfStock
	})
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		return domain.ErrTransient
	})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return domain.ErrTransient
	})
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrTransient))
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = retry(context.Background(), RetryPolicy{}, func(context.Context) error {
		calls++
		return domain.ErrTransient
	})
	assert.Equal(t, 1, calls)
}

func TestStockStatus(t *testing.T) {
	assert.Equal(t, StatusInStock, stockStatus(5))
	assert.Equal(t, StatusLowStock, stockStatus(1))
	assert.Equal(t, StatusOutOfStock, stockStatus(0))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "science-fiction", Slugify("Science  Fiction!"))
	assert.Equal(t, "c-programming", Slugify("--C++ Programming"))
	assert.Equal(t, "", Slugify("***"))
}
