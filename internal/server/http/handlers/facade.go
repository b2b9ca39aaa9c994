package handlers

import (
	"context"

	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/usecase"
)

// PaymentFacade encapsulates checkout and confirmation operations exposed via HTTP.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, productName string, price int64) (*model.Order, string, error)
	ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error)
	OrderWithLicense(ctx context.Context, orderCode int64) (*model.Order, *model.License, error)
}

// LicenseFacade encapsulates redemption and lookup operations exposed via HTTP.
type LicenseFacade interface {
	ActivateLicense(ctx context.Context, key, deviceID string) (*model.License, error)
	BindDevice(ctx context.Context, key, deviceID string) error
	CheckLicense(ctx context.Context, key string) (*usecase.LicenseCheck, error)
	DeviceLicense(ctx context.Context, deviceID string) (*usecase.LicenseCheck, error)
}

// AdminFacade provides the authenticated introspection surface.
type AdminFacade interface {
	AdminLogin(password string) (string, error)
	ParseAdminToken(token string) (int64, error)
	AdminOrders(ctx context.Context) ([]model.Order, error)
	AdminLicenses(ctx context.Context) ([]model.License, error)
}

// LicensingFacade aggregates the full set of operations used across handlers.
type LicensingFacade interface {
	PaymentFacade
	LicenseFacade
	AdminFacade
}
