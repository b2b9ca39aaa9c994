package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/usecase"
)

// PaymentFacadeStub provides controllable behaviour for checkout endpoints.
type PaymentFacadeStub struct {
	CreateFn  func(context.Context, string, int64) (*model.Order, string, error)
	ConfirmFn func(context.Context, int64, int64) (*model.License, error)
	ByOrderFn func(context.Context, int64) (*model.Order, *model.License, error)

	mu       sync.Mutex
	Confirms []int64
}

// CreatePayment delegates to provided function or returns a default order.
func (s *PaymentFacadeStub) CreatePayment(ctx context.Context, productName string, price int64) (*model.Order, string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, productName, price)
	}
	return &model.Order{Code: 1, Status: model.OrderStatusPending, Amount: price, Description: productName}, "https://pay.example/checkout/1", nil
}

// ConfirmPayment records invocations and returns configured responses.
func (s *PaymentFacadeStub) ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error) {
	s.mu.Lock()
	s.Confirms = append(s.Confirms, orderCode)
	s.mu.Unlock()
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderCode, amount)
	}
	return &model.License{Key: "PACK-0000-0000-0000-0001", OrderCode: orderCode, Status: model.LicenseStatusActive}, nil
}

// ConfirmCalls returns the recorded order codes.
func (s *PaymentFacadeStub) ConfirmCalls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.Confirms...)
}

// OrderWithLicense delegates to provided function or reports a pending order.
func (s *PaymentFacadeStub) OrderWithLicense(ctx context.Context, orderCode int64) (*model.Order, *model.License, error) {
	if s.ByOrderFn != nil {
		return s.ByOrderFn(ctx, orderCode)
	}
	return &model.Order{Code: orderCode, Status: model.OrderStatusPending}, nil, nil
}

// LicenseFacadeStub simulates redemption operations.
type LicenseFacadeStub struct {
	ActivateFn    func(context.Context, string, string) (*model.License, error)
	BindFn        func(context.Context, string, string) error
	CheckFn       func(context.Context, string) (*usecase.LicenseCheck, error)
	CheckDeviceFn func(context.Context, string) (*usecase.LicenseCheck, error)
}

// ActivateLicense executes configured handler or returns a used license.
func (s LicenseFacadeStub) ActivateLicense(ctx context.Context, key, deviceID string) (*model.License, error) {
	if s.ActivateFn != nil {
		return s.ActivateFn(ctx, key, deviceID)
	}
	return &model.License{Key: key, Status: model.LicenseStatusUsed, ExpiresAt: time.Unix(0, 0).Add(24 * time.Hour)}, nil
}

// BindDevice executes configured handler.
func (s LicenseFacadeStub) BindDevice(ctx context.Context, key, deviceID string) error {
	if s.BindFn != nil {
		return s.BindFn(ctx, key, deviceID)
	}
	return nil
}

// CheckLicense returns configured validity snapshot.
func (s LicenseFacadeStub) CheckLicense(ctx context.Context, key string) (*usecase.LicenseCheck, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, key)
	}
	return &usecase.LicenseCheck{License: &model.License{Key: key}, Valid: true, DaysLeft: 1}, nil
}

// DeviceLicense returns configured validity snapshot for a device.
func (s LicenseFacadeStub) DeviceLicense(ctx context.Context, deviceID string) (*usecase.LicenseCheck, error) {
	if s.CheckDeviceFn != nil {
		return s.CheckDeviceFn(ctx, deviceID)
	}
	return &usecase.LicenseCheck{License: &model.License{Key: "PACK-0000-0000-0000-0001"}, Valid: true, DaysLeft: 1}, nil
}

// AdminFacadeStub simulates the introspection surface.
type AdminFacadeStub struct {
	LoginFn    func(string) (string, error)
	ParseFn    func(string) (int64, error)
	OrdersFn   func(context.Context) ([]model.Order, error)
	LicensesFn func(context.Context) ([]model.License, error)
}

// AdminLogin delegates to provided function or returns a fixed token.
func (s AdminFacadeStub) AdminLogin(password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(password)
	}
	return "token", nil
}

// ParseAdminToken delegates to provided function or accepts any token.
func (s AdminFacadeStub) ParseAdminToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// AdminOrders returns predefined ledger dump.
func (s AdminFacadeStub) AdminOrders(ctx context.Context) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return []model.Order{{Code: 1, Status: model.OrderStatusPending}}, nil
}

// AdminLicenses returns predefined registry dump.
func (s AdminFacadeStub) AdminLicenses(ctx context.Context) ([]model.License, error) {
	if s.LicensesFn != nil {
		return s.LicensesFn(ctx)
	}
	return []model.License{{Key: "PACK-0000-0000-0000-0001", Status: model.LicenseStatusActive}}, nil
}

// LicensingFacadeStub aggregates the facade stubs for router level tests.
type LicensingFacadeStub struct {
	*PaymentFacadeStub
	LicenseFacadeStub
	AdminFacadeStub
}

// TokenParserStub simulates admin token validation for middleware tests.
type TokenParserStub struct {
	Subject int64
	Err     error
}

// ParseAdminToken returns configured subject and error.
func (s TokenParserStub) ParseAdminToken(token string) (int64, error) {
	return s.Subject, s.Err
}

// ConfirmCall stores information about ConfirmPayment invocations.
type ConfirmCall struct {
	OrderCode int64
	Amount    int64
}

// SweeperFacadeStub mimics worker interactions with the licensing facade.
type SweeperFacadeStub struct {
	Batches  [][]model.Order
	StatusFn func(context.Context, int64) (*model.PaymentLink, error)
	Confirms []ConfirmCall

	mu             sync.Mutex
	batchCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *SweeperFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SweeperFacadeStub) Unlock() { s.mu.Unlock() }

// StalePendingOrders returns batches from configured queue.
func (s *SweeperFacadeStub) StalePendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	call := atomic.AddInt32(&s.batchCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// PaymentStatus returns configured provider state, PAID by default.
func (s *SweeperFacadeStub) PaymentStatus(ctx context.Context, orderCode int64) (*model.PaymentLink, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderCode)
	}
	return &model.PaymentLink{OrderCode: orderCode, Status: model.PaymentLinkStatusPaid}, nil
}

// ConfirmPayment records confirmation requests.
func (s *SweeperFacadeStub) ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Confirms = append(s.Confirms, ConfirmCall{OrderCode: orderCode, Amount: amount})
	return &model.License{Key: "PACK-0000-0000-0000-0001", OrderCode: orderCode}, nil
}
