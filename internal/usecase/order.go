package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
	"github.com/packlab/packstore/internal/pkg/clock"
)

const orderCodeAttempts = 16

// OrderUseCase encapsulates payment ledger logic.
type OrderUseCase struct {
	orders repository.OrderRepository
	clock  clock.Clock
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, clk clock.Clock) *OrderUseCase {
	return &OrderUseCase{orders: orders, clock: clk}
}

// NextCode derives a fresh order code from the current time, skipping codes
// the ledger already holds.
func (u *OrderUseCase) NextCode(ctx context.Context) (int64, error) {
	candidate := u.clock.Now().UnixMilli()
	for i := 0; i < orderCodeAttempts; i++ {
		_, err := u.orders.Get(ctx, candidate)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return 0, err
		}
		candidate++
	}
	return 0, domainErrors.ErrDuplicateOrder
}

// Record registers a pending order in the ledger after the checkout link
// has been obtained from the provider.
func (u *OrderUseCase) Record(ctx context.Context, code int64, amount int64, description string) (*model.Order, error) {
	if code <= 0 || amount <= 0 || strings.TrimSpace(description) == "" {
		return nil, domainErrors.ErrValidation
	}
	return u.orders.Create(ctx, code, amount, description)
}

// Get returns the ledger entry for a code.
func (u *OrderUseCase) Get(ctx context.Context, code int64) (*model.Order, error) {
	return u.orders.Get(ctx, code)
}

// StalePending returns pending orders old enough to be re-checked against
// the provider.
func (u *OrderUseCase) StalePending(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	return u.orders.ListPending(ctx, u.clock.Now().Add(-minAge), limit)
}

// List returns every ledger entry.
func (u *OrderUseCase) List(ctx context.Context) ([]model.Order, error) {
	return u.orders.List(ctx)
}
