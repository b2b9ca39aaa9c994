package repository

import (
	"context"
	"time"

	"github.com/packlab/packstore/internal/domain/model"
)

// OrderRepository describes persistence operations with the payment ledger.
type OrderRepository interface {
	// Create records a new pending order. Fails with ErrDuplicateOrder when
	// the code is already taken.
	Create(ctx context.Context, code int64, amount int64, description string) (*model.Order, error)
	// Get returns the order or ErrNotFound.
	Get(ctx context.Context, code int64) (*model.Order, error)
	// MarkCompleted transitions pending -> completed, recording the minted
	// license key and completion time. Returns the order unchanged when it
	// is already completed; this is the idempotency anchor.
	MarkCompleted(ctx context.Context, code int64, licenseKey string) (*model.Order, error)
	// ListPending returns pending orders created before the given instant.
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)
	// List returns all orders sorted by creation time.
	List(ctx context.Context) ([]model.Order, error)
}
