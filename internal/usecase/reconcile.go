package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
)

// recoveredOrderDescription marks ledger entries created lazily from a
// confirmation for an order this process never recorded.
const recoveredOrderDescription = "recovered from payment confirmation"

// ReconcileUseCase turns payment confirmations into minted licenses.
//
// Confirmations arrive from the browser redirect, the provider webhook and
// the pending sweeper, in any order, possibly duplicated or concurrent. All
// three funnel into ConfirmPayment, which guarantees exactly one license per
// order.
type ReconcileUseCase struct {
	orders   repository.OrderRepository
	licenses *LicenseUseCase
	locks    *keyedMutex[int64]
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(orders repository.OrderRepository, licenses *LicenseUseCase) *ReconcileUseCase {
	return &ReconcileUseCase{orders: orders, licenses: licenses, locks: newKeyedMutex[int64]()}
}

// ConfirmPayment records a successful payment for the order and returns its
// license. Repeated or concurrent calls for the same order return the
// license minted by the first one.
func (u *ReconcileUseCase) ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error) {
	if orderCode <= 0 {
		return nil, domainErrors.ErrValidation
	}

	unlock := u.locks.Lock(orderCode)
	defer unlock()

	order, err := u.orders.Get(ctx, orderCode)
	if errors.Is(err, domainErrors.ErrNotFound) {
		// A confirmation must never be lost because the ledger lacks a
		// prior record: creation may have happened in another process.
		order, err = u.orders.Create(ctx, orderCode, amount, recoveredOrderDescription)
		if errors.Is(err, domainErrors.ErrDuplicateOrder) {
			order, err = u.orders.Get(ctx, orderCode)
		}
	}
	if err != nil {
		return nil, err
	}

	if order.Completed() {
		return u.licenses.ByOrder(ctx, orderCode)
	}

	license, err := u.licenses.Mint(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("mint license for order %d: %w", orderCode, err)
	}

	if _, err := u.orders.MarkCompleted(ctx, orderCode, license.Key); err != nil {
		return nil, fmt.Errorf("complete order %d: %w", orderCode, err)
	}

	return license, nil
}
