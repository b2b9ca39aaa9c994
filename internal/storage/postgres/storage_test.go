package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
)

var (
	createdAt   = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	completedAt = createdAt.Add(time.Minute)
	expiresAt   = createdAt.Add(365 * 24 * time.Hour)
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	statements := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS licenses",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_licenses_order ON licenses",
		"CREATE INDEX IF NOT EXISTS idx_licenses_device ON licenses",
		"CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders",
	}
	for _, stmt := range statements {
		mock.ExpectExec(stmt).WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}
}

func TestInitSchema(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		expectSchema(mock)

		if err := storage.initSchema(context.Background()); err != nil {
			t.Fatalf("initSchema returned error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("statement failure", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnError(errors.New("boom"))

		if err := storage.initSchema(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestNewParseError(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := New(context.Background(), ":://bad", logger); err == nil {
		t.Fatal("expected error")
	}
}

func TestOrderCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(int64(100), model.OrderStatusPending, int64(990000), "packstore pro").
			WillReturnRows(pgxmockv3.NewRows([]string{"created_at"}).AddRow(createdAt))

		order, err := storage.Orders().Create(context.Background(), 100, 990000, "packstore pro")
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if order.Code != 100 || order.Status != model.OrderStatusPending || !order.CreatedAt.Equal(createdAt) {
			t.Fatalf("unexpected order %+v", order)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(int64(100), model.OrderStatusPending, int64(990000), "packstore pro").
			WillReturnRows(pgxmockv3.NewRows([]string{"created_at"}))

		if _, err := storage.Orders().Create(context.Background(), 100, 990000, "packstore pro"); !errors.Is(err, domainErrors.ErrDuplicateOrder) {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
	})
}

func TestOrderGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		rows := pgxmockv3.NewRows([]string{"code", "status", "amount", "description", "license_key", "created_at", "completed_at"}).
			AddRow(int64(100), model.OrderStatusPending, int64(990000), "packstore pro", nil, createdAt, nil)
		mock.ExpectQuery("SELECT code, status, amount, description, license_key, created_at, completed_at").
			WithArgs(int64(100)).
			WillReturnRows(rows)

		order, err := storage.Orders().Get(context.Background(), 100)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if order.Code != 100 || order.LicenseKey != nil {
			t.Fatalf("unexpected order %+v", order)
		}
	})

	t.Run("not found", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		mock.ExpectQuery("SELECT code, status, amount, description, license_key, created_at, completed_at").
			WithArgs(int64(999)).
			WillReturnRows(pgxmockv3.NewRows([]string{"code", "status", "amount", "description", "license_key", "created_at", "completed_at"}))

		if _, err := storage.Orders().Get(context.Background(), 999); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestOrderMarkCompleted(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	licenseKey := "PACK-0000-0000-0000-0001"
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET").
		WithArgs(model.OrderStatusCompleted, licenseKey, int64(100), model.OrderStatusPending).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	rows := pgxmockv3.NewRows([]string{"code", "status", "amount", "description", "license_key", "created_at", "completed_at"}).
		AddRow(int64(100), model.OrderStatusCompleted, int64(990000), "packstore pro", &licenseKey, createdAt, &completedAt)
	mock.ExpectQuery("SELECT code, status, amount, description, license_key, created_at, completed_at").
		WithArgs(int64(100)).
		WillReturnRows(rows)
	mock.ExpectCommit()

	order, err := storage.Orders().MarkCompleted(context.Background(), 100, licenseKey)
	if err != nil {
		t.Fatalf("MarkCompleted returned error: %v", err)
	}
	if !order.Completed() || order.LicenseKey == nil || *order.LicenseKey != licenseKey {
		t.Fatalf("unexpected order %+v", order)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderListPending(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	cutoff := createdAt.Add(time.Hour)
	rows := pgxmockv3.NewRows([]string{"code", "status", "amount", "description", "license_key", "created_at", "completed_at"}).
		AddRow(int64(100), model.OrderStatusPending, int64(990000), "packstore pro", nil, createdAt, nil).
		AddRow(int64(101), model.OrderStatusPending, int64(490000), "packstore lite", nil, createdAt.Add(time.Minute), nil)
	mock.ExpectQuery("SELECT code, status, amount, description, license_key, created_at, completed_at").
		WithArgs(model.OrderStatusPending, cutoff, 10).
		WillReturnRows(rows)

	pending, err := storage.Orders().ListPending(context.Background(), cutoff, 10)
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(pending) != 2 || pending[0].Code != 100 || pending[1].Code != 101 {
		t.Fatalf("unexpected pending orders %+v", pending)
	}
}

func TestLicenseCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		lic := &model.License{
			Key:       "PACK-0000-0000-0000-0001",
			OrderCode: 100,
			Status:    model.LicenseStatusActive,
			ExpiresAt: expiresAt,
			CreatedAt: createdAt,
		}
		mock.ExpectQuery("INSERT INTO licenses").
			WithArgs(lic.Key, lic.OrderCode, lic.Status, lic.DeviceHash, lic.ExpiresAt, lic.CreatedAt).
			WillReturnRows(pgxmockv3.NewRows([]string{"key"}).AddRow(lic.Key))

		created, err := storage.Licenses().Create(context.Background(), lic)
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if created.Key != lic.Key || created.OrderCode != 100 {
			t.Fatalf("unexpected license %+v", created)
		}
	})

	t.Run("key collision", func(t *testing.T) {
		storage, mock := newMockStorage(t)
		defer mock.Close()

		lic := &model.License{Key: "PACK-0000-0000-0000-0001", OrderCode: 100, Status: model.LicenseStatusActive, ExpiresAt: expiresAt, CreatedAt: createdAt}
		mock.ExpectQuery("INSERT INTO licenses").
			WithArgs(lic.Key, lic.OrderCode, lic.Status, lic.DeviceHash, lic.ExpiresAt, lic.CreatedAt).
			WillReturnRows(pgxmockv3.NewRows([]string{"key"}))

		if _, err := storage.Licenses().Create(context.Background(), lic); !errors.Is(err, domainErrors.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestLicenseGetByKey(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	rows := pgxmockv3.NewRows([]string{"key", "order_code", "status", "device_hash", "expires_at", "created_at", "activated_at"}).
		AddRow("PACK-0000-0000-0000-0001", int64(100), model.LicenseStatusUsed, "hash-a", expiresAt, createdAt, &completedAt)
	mock.ExpectQuery("SELECT key, order_code, status, device_hash, expires_at, created_at, activated_at").
		WithArgs("PACK-0000-0000-0000-0001").
		WillReturnRows(rows)

	lic, err := storage.Licenses().GetByKey(context.Background(), "PACK-0000-0000-0000-0001")
	if err != nil {
		t.Fatalf("GetByKey returned error: %v", err)
	}
	if lic.Status != model.LicenseStatusUsed || lic.DeviceHash != "hash-a" || lic.ActivatedAt == nil {
		t.Fatalf("unexpected license %+v", lic)
	}
}

func TestLicenseUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	activated := completedAt
	lic := &model.License{
		Key:         "PACK-0000-0000-0000-0001",
		OrderCode:   100,
		Status:      model.LicenseStatusUsed,
		DeviceHash:  "hash-a",
		ExpiresAt:   expiresAt,
		CreatedAt:   createdAt,
		ActivatedAt: &activated,
	}
	rows := pgxmockv3.NewRows([]string{"key", "order_code", "status", "device_hash", "expires_at", "created_at", "activated_at"}).
		AddRow(lic.Key, lic.OrderCode, lic.Status, lic.DeviceHash, lic.ExpiresAt, lic.CreatedAt, lic.ActivatedAt)
	mock.ExpectQuery("UPDATE licenses SET").
		WithArgs(lic.Status, lic.DeviceHash, lic.ActivatedAt, lic.Key).
		WillReturnRows(rows)

	updated, err := storage.Licenses().Update(context.Background(), lic)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Status != model.LicenseStatusUsed || updated.DeviceHash != "hash-a" {
		t.Fatalf("unexpected license %+v", updated)
	}
}

type pingPool struct {
	DBPool
	err error
}

func (p *pingPool) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	storage := &Storage{pool: &pingPool{}, logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	if err := storage.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	storage = &Storage{pool: &pingPool{err: errors.New("down")}, logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	if err := storage.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
