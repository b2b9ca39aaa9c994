package repository

import (
	"context"

	"github.com/packlab/packstore/internal/domain/model"
)

// LicenseRepository describes persistence operations with the license registry.
type LicenseRepository interface {
	// Create stores a freshly minted license. Fails with ErrAlreadyExists
	// when the key collides with a stored one.
	Create(ctx context.Context, license *model.License) (*model.License, error)
	// GetByKey returns the license for a normalized key or ErrNotFound.
	GetByKey(ctx context.Context, key string) (*model.License, error)
	// GetByOrder returns the license minted for the order or ErrNotFound.
	GetByOrder(ctx context.Context, orderCode int64) (*model.License, error)
	// GetByDevice returns the license currently bound to the device hash
	// or ErrNotFound.
	GetByDevice(ctx context.Context, deviceHash string) (*model.License, error)
	// Update persists status, device binding and activation time by key.
	Update(ctx context.Context, license *model.License) (*model.License, error)
	// List returns all licenses sorted by creation time.
	List(ctx context.Context) ([]model.License, error)
}
