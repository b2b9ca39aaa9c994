package app

import (
	"context"
	"errors"
	"strings"
	"time"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/usecase"
)

// PaymentProvider abstracts the payment gateway used during checkout.
type PaymentProvider interface {
	CreatePaymentLink(ctx context.Context, orderCode int64, amount int64, description string) (*model.PaymentLink, error)
	GetPaymentLink(ctx context.Context, orderCode int64) (*model.PaymentLink, error)
}

// LicensingFacade aggregates the use cases behind a single application surface.
type LicensingFacade struct {
	orders    *usecase.OrderUseCase
	licenses  *usecase.LicenseUseCase
	reconcile *usecase.ReconcileUseCase
	admin     *usecase.AdminUseCase
	payments  PaymentProvider
}

func NewLicensingFacade(orders *usecase.OrderUseCase, licenses *usecase.LicenseUseCase, reconcile *usecase.ReconcileUseCase, admin *usecase.AdminUseCase, payments PaymentProvider) *LicensingFacade {
	return &LicensingFacade{orders: orders, licenses: licenses, reconcile: reconcile, admin: admin, payments: payments}
}

// CreatePayment registers a payment request with the provider and records
// the pending order. The order is recorded only after the provider call
// succeeds, and no ledger lock is held across that call.
func (f *LicensingFacade) CreatePayment(ctx context.Context, productName string, price int64) (*model.Order, string, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" || price <= 0 {
		return nil, "", domainErrors.ErrValidation
	}

	code, err := f.orders.NextCode(ctx)
	if err != nil {
		return nil, "", err
	}

	link, err := f.payments.CreatePaymentLink(ctx, code, price, productName)
	if err != nil {
		return nil, "", err
	}

	order, err := f.orders.Record(ctx, code, price, productName)
	if err != nil {
		return nil, "", err
	}

	return order, link.CheckoutURL, nil
}

// ConfirmPayment funnels a payment confirmation into the reconciler.
func (f *LicensingFacade) ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error) {
	return f.reconcile.ConfirmPayment(ctx, orderCode, amount)
}

// OrderWithLicense returns the ledger entry and, when issued, its license.
func (f *LicensingFacade) OrderWithLicense(ctx context.Context, orderCode int64) (*model.Order, *model.License, error) {
	order, err := f.orders.Get(ctx, orderCode)
	if err != nil {
		return nil, nil, err
	}
	if !order.Completed() {
		return order, nil, nil
	}
	license, err := f.licenses.ByOrder(ctx, orderCode)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return order, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return order, license, nil
}

// ActivateLicense redeems a key, optionally binding a device.
func (f *LicensingFacade) ActivateLicense(ctx context.Context, key, deviceID string) (*model.License, error) {
	return f.licenses.Activate(ctx, key, deviceID)
}

// BindDevice ties a license to a device outside of activation.
func (f *LicensingFacade) BindDevice(ctx context.Context, key, deviceID string) error {
	return f.licenses.BindDevice(ctx, key, deviceID)
}

// CheckLicense reports validity for a key.
func (f *LicensingFacade) CheckLicense(ctx context.Context, key string) (*usecase.LicenseCheck, error) {
	return f.licenses.Check(ctx, key)
}

// DeviceLicense recovers the license bound to a device.
func (f *LicensingFacade) DeviceLicense(ctx context.Context, deviceID string) (*usecase.LicenseCheck, error) {
	return f.licenses.CheckByDevice(ctx, deviceID)
}

// StalePendingOrders returns pending orders due for a provider re-check.
func (f *LicensingFacade) StalePendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	return f.orders.StalePending(ctx, minAge, limit)
}

// PaymentStatus queries the provider for the payment request state.
func (f *LicensingFacade) PaymentStatus(ctx context.Context, orderCode int64) (*model.PaymentLink, error) {
	return f.payments.GetPaymentLink(ctx, orderCode)
}

// AdminLogin exchanges the admin password for a session token.
func (f *LicensingFacade) AdminLogin(password string) (string, error) {
	return f.admin.Login(password)
}

// ParseAdminToken validates an admin session token.
func (f *LicensingFacade) ParseAdminToken(token string) (int64, error) {
	return f.admin.ParseToken(token)
}

// AdminOrders dumps the ledger for introspection.
func (f *LicensingFacade) AdminOrders(ctx context.Context) ([]model.Order, error) {
	return f.admin.Orders(ctx)
}

// AdminLicenses dumps the registry for introspection.
func (f *LicensingFacade) AdminLicenses(ctx context.Context) ([]model.License, error) {
	return f.admin.Licenses(ctx)
}
