package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	pkgAuth "github.com/packlab/packstore/internal/pkg/auth"
	"github.com/packlab/packstore/internal/pkg/clock"
	"github.com/packlab/packstore/internal/storage/memory"
)

func newAdminFixture(t *testing.T) (*AdminUseCase, *memory.Storage) {
	t.Helper()
	storage := memory.New(clock.Fixed{Instant: testNow})
	hasher := pkgAuth.NewBcryptHasher(4)
	tokens := pkgAuth.NewHMACStrategy("test-secret", pkgAuth.Options{TTL: time.Hour})
	uc, err := NewAdminUseCase(storage.Orders(), storage.Licenses(), hasher, tokens, "hunter2")
	if err != nil {
		t.Fatalf("NewAdminUseCase returned error: %v", err)
	}
	return uc, storage
}

func TestAdminLogin(t *testing.T) {
	uc, _ := newAdminFixture(t)

	token, err := uc.Login("hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	subject, err := uc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if subject != adminSubject {
		t.Fatalf("unexpected subject %d", subject)
	}

	if _, err := uc.Login("wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.Login(""); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := uc.ParseToken("garbage"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAdminDumps(t *testing.T) {
	uc, storage := newAdminFixture(t)
	ctx := context.Background()

	if _, err := storage.Orders().Create(ctx, 100, 990000, "packstore pro"); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	orders, err := uc.Orders(ctx)
	if err != nil {
		t.Fatalf("Orders returned error: %v", err)
	}
	if len(orders) != 1 || orders[0].Code != 100 {
		t.Fatalf("unexpected orders %+v", orders)
	}

	licenses, err := uc.Licenses(ctx)
	if err != nil {
		t.Fatalf("Licenses returned error: %v", err)
	}
	if len(licenses) != 0 {
		t.Fatalf("expected empty registry, got %d entries", len(licenses))
	}
}
