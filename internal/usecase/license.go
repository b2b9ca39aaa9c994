package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/packlab/packstore/internal/config"
	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
	"github.com/packlab/packstore/internal/pkg/clock"
	"github.com/packlab/packstore/internal/pkg/keygen"
)

const mintAttempts = 5

// LicenseCheck is the validity snapshot returned by lookup endpoints.
type LicenseCheck struct {
	License  *model.License
	Valid    bool
	DaysLeft int
}

// LicenseUseCase owns license identity, expiry and device binding.
type LicenseUseCase struct {
	licenses repository.LicenseRepository
	clock    clock.Clock
	ttl      time.Duration
	strict   bool
	locks    *keyedMutex[string]
}

// NewLicenseUseCase constructs LicenseUseCase.
func NewLicenseUseCase(licenses repository.LicenseRepository, clk clock.Clock, ttl time.Duration, bindingPolicy string) *LicenseUseCase {
	return &LicenseUseCase{
		licenses: licenses,
		clock:    clk,
		ttl:      ttl,
		strict:   bindingPolicy != config.BindingPolicyLenient,
		locks:    newKeyedMutex[string](),
	}
}

// Mint issues a fresh unredeemed license for the order. Key collisions are
// retried; the key space makes them negligible in practice.
func (u *LicenseUseCase) Mint(ctx context.Context, orderCode int64) (*model.License, error) {
	now := u.clock.Now()
	for i := 0; i < mintAttempts; i++ {
		key, err := keygen.Generate()
		if err != nil {
			return nil, err
		}
		license := &model.License{
			Key:       key,
			OrderCode: orderCode,
			Status:    model.LicenseStatusActive,
			ExpiresAt: now.Add(u.ttl),
			CreatedAt: now,
		}
		created, err := u.licenses.Create(ctx, license)
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return created, nil
	}
	return nil, domainErrors.ErrAlreadyExists
}

// ByOrder returns the license minted for an order.
func (u *LicenseUseCase) ByOrder(ctx context.Context, orderCode int64) (*model.License, error) {
	return u.licenses.GetByOrder(ctx, orderCode)
}

// Activate redeems a key and optionally binds it to a device.
//
// An unredeemed license becomes used; a bound license accepts only the same
// device again (idempotent self-loop) unless the lenient policy permits a
// rebind. Expired licenses are rejected regardless of status.
func (u *LicenseUseCase) Activate(ctx context.Context, rawKey, deviceID string) (*model.License, error) {
	key := keygen.Normalize(rawKey)
	if key == "" {
		return nil, domainErrors.ErrValidation
	}

	unlock := u.locks.Lock(key)
	defer unlock()

	license, err := u.licenses.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if !license.Valid(now) {
		return nil, domainErrors.ErrExpired
	}

	var deviceHash string
	if deviceID != "" {
		deviceHash = keygen.HashDevice(deviceID)
	}

	if license.Status == model.LicenseStatusActive {
		license.Status = model.LicenseStatusUsed
		license.ActivatedAt = &now
		license.DeviceHash = deviceHash
		return u.licenses.Update(ctx, license)
	}

	// Already redeemed.
	switch {
	case deviceHash == "":
		if u.strict && license.Bound() {
			return nil, domainErrors.ErrAlreadyActivated
		}
		return license, nil
	case !license.Bound():
		license.DeviceHash = deviceHash
		return u.licenses.Update(ctx, license)
	case license.BoundTo(deviceHash):
		return license, nil
	case u.strict:
		return nil, domainErrors.ErrDeviceMismatch
	default:
		license.DeviceHash = deviceHash
		return u.licenses.Update(ctx, license)
	}
}

// BindDevice associates a device with a license outside of activation.
func (u *LicenseUseCase) BindDevice(ctx context.Context, rawKey, deviceID string) error {
	key := keygen.Normalize(rawKey)
	if key == "" || deviceID == "" {
		return domainErrors.ErrValidation
	}

	unlock := u.locks.Lock(key)
	defer unlock()

	license, err := u.licenses.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	if !license.Valid(u.clock.Now()) {
		return domainErrors.ErrExpired
	}

	deviceHash := keygen.HashDevice(deviceID)
	switch {
	case !license.Bound():
		license.DeviceHash = deviceHash
	case license.BoundTo(deviceHash):
		return nil
	case u.strict:
		return domainErrors.ErrDeviceMismatch
	default:
		license.DeviceHash = deviceHash
	}

	_, err = u.licenses.Update(ctx, license)
	return err
}

// Check reports validity and remaining days for a key.
func (u *LicenseUseCase) Check(ctx context.Context, rawKey string) (*LicenseCheck, error) {
	key := keygen.Normalize(rawKey)
	if key == "" {
		return nil, domainErrors.ErrValidation
	}
	license, err := u.licenses.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return u.check(license), nil
}

// CheckByDevice recovers the license bound to a device without the key.
func (u *LicenseUseCase) CheckByDevice(ctx context.Context, deviceID string) (*LicenseCheck, error) {
	if deviceID == "" {
		return nil, domainErrors.ErrValidation
	}
	license, err := u.licenses.GetByDevice(ctx, keygen.HashDevice(deviceID))
	if err != nil {
		return nil, err
	}
	return u.check(license), nil
}

// List returns every license in the registry.
func (u *LicenseUseCase) List(ctx context.Context) ([]model.License, error) {
	return u.licenses.List(ctx)
}

func (u *LicenseUseCase) check(license *model.License) *LicenseCheck {
	now := u.clock.Now()
	days := 0
	if remaining := license.ExpiresAt.Sub(now); remaining > 0 {
		days = int(math.Ceil(remaining.Hours() / 24))
	}
	return &LicenseCheck{License: license, Valid: license.Valid(now), DaysLeft: days}
}
