package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/packlab/packstore/internal/config"
	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/pkg/clock"
	"github.com/packlab/packstore/internal/storage/memory"
)

func newReconcileFixture(t *testing.T) (*ReconcileUseCase, *memory.Storage) {
	t.Helper()
	storage := memory.New(clock.Fixed{Instant: testNow})
	licenses := NewLicenseUseCase(storage.Licenses(), clock.Fixed{Instant: testNow}, yearTTL, config.BindingPolicyStrict)
	return NewReconcileUseCase(storage.Orders(), licenses), storage
}

func TestConfirmPaymentMintsOnce(t *testing.T) {
	uc, storage := newReconcileFixture(t)
	ctx := context.Background()

	if _, err := storage.Orders().Create(ctx, 100, 990000, "packstore pro"); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	first, err := uc.ConfirmPayment(ctx, 100, 990000)
	if err != nil {
		t.Fatalf("first ConfirmPayment returned error: %v", err)
	}
	second, err := uc.ConfirmPayment(ctx, 100, 990000)
	if err != nil {
		t.Fatalf("second ConfirmPayment returned error: %v", err)
	}
	if first.Key != second.Key {
		t.Fatalf("duplicate confirmation minted a new key: %q vs %q", first.Key, second.Key)
	}

	licenses, err := storage.Licenses().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(licenses) != 1 {
		t.Fatalf("expected exactly one license, got %d", len(licenses))
	}

	order, err := storage.Orders().Get(ctx, 100)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !order.Completed() || order.LicenseKey == nil || *order.LicenseKey != first.Key {
		t.Fatalf("order not completed with minted key: %+v", order)
	}
}

func TestConfirmPaymentConcurrent(t *testing.T) {
	uc, storage := newReconcileFixture(t)
	ctx := context.Background()

	if _, err := storage.Orders().Create(ctx, 100, 990000, "packstore pro"); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	const confirmations = 16
	keys := make([]string, confirmations)
	errs := make([]error, confirmations)
	var wg sync.WaitGroup
	for i := 0; i < confirmations; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lic, err := uc.ConfirmPayment(ctx, 100, 990000)
			if err != nil {
				errs[i] = err
				return
			}
			keys[i] = lic.Key
		}(i)
	}
	wg.Wait()

	for i := 0; i < confirmations; i++ {
		if errs[i] != nil {
			t.Fatalf("confirmation %d failed: %v", i, errs[i])
		}
		if keys[i] != keys[0] {
			t.Fatalf("confirmation %d returned a different key: %q vs %q", i, keys[i], keys[0])
		}
	}

	licenses, err := storage.Licenses().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(licenses) != 1 {
		t.Fatalf("expected exactly one license, got %d", len(licenses))
	}
}

func TestConfirmPaymentRecoversUnknownOrder(t *testing.T) {
	uc, storage := newReconcileFixture(t)
	ctx := context.Background()

	lic, err := uc.ConfirmPayment(ctx, 200, 490000)
	if err != nil {
		t.Fatalf("ConfirmPayment returned error: %v", err)
	}

	order, err := storage.Orders().Get(ctx, 200)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !order.Completed() {
		t.Fatal("recovered order not completed")
	}
	if order.Amount != 490000 {
		t.Fatalf("recovered order lost amount: %d", order.Amount)
	}
	if order.Description != recoveredOrderDescription {
		t.Fatalf("unexpected description %q", order.Description)
	}
	if order.LicenseKey == nil || *order.LicenseKey != lic.Key {
		t.Fatalf("recovered order not linked to license: %+v", order)
	}
}

func TestConfirmPaymentValidation(t *testing.T) {
	uc, _ := newReconcileFixture(t)
	if _, err := uc.ConfirmPayment(context.Background(), 0, 100); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := uc.ConfirmPayment(context.Background(), -5, 100); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestConfirmPaymentCompletedOrderReturnsExistingLicense(t *testing.T) {
	uc, storage := newReconcileFixture(t)
	ctx := context.Background()

	first, err := uc.ConfirmPayment(ctx, 100, 990000)
	if err != nil {
		t.Fatalf("ConfirmPayment returned error: %v", err)
	}

	// A later confirmation from another channel sees the completed order.
	again, err := uc.ConfirmPayment(ctx, 100, 990000)
	if err != nil {
		t.Fatalf("repeat ConfirmPayment returned error: %v", err)
	}
	if again.Key != first.Key {
		t.Fatalf("expected existing license %q, got %q", first.Key, again.Key)
	}

	orders, err := storage.Orders().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(orders))
	}
}
