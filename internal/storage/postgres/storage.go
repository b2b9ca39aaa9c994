package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
)

// DBPool captures the pgxpool surface the storage relies on.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   DBPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type licenseRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Licenses() repository.LicenseRepository {
	return &licenseRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            code BIGINT PRIMARY KEY,
            status TEXT NOT NULL,
            amount BIGINT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            license_key TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            completed_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS licenses (
            key TEXT PRIMARY KEY,
            order_code BIGINT NOT NULL REFERENCES orders(code),
            status TEXT NOT NULL,
            device_hash TEXT NOT NULL DEFAULT '',
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            activated_at TIMESTAMPTZ
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_licenses_order ON licenses(order_code)`,
		`CREATE INDEX IF NOT EXISTS idx_licenses_device ON licenses(device_hash) WHERE device_hash <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders(created_at) WHERE status = 'PENDING'`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, code int64, amount int64, description string) (*model.Order, error) {
	const query = `INSERT INTO orders (code, status, amount, description) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (code) DO NOTHING
                   RETURNING created_at`
	order := model.Order{Code: code, Status: model.OrderStatusPending, Amount: amount, Description: description}
	err := r.storage.pool.QueryRow(ctx, query, code, model.OrderStatusPending, amount, description).Scan(&order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrDuplicateOrder
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Get(ctx context.Context, code int64) (*model.Order, error) {
	const query = `SELECT code, status, amount, description, license_key, created_at, completed_at
                   FROM orders WHERE code=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, code))
}

func (r *orderRepository) MarkCompleted(ctx context.Context, code int64, licenseKey string) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const updateQuery = `UPDATE orders SET status=$1, license_key=$2, completed_at=NOW()
                             WHERE code=$3 AND status=$4`
		if _, err := tx.Exec(ctx, updateQuery, model.OrderStatusCompleted, licenseKey, code, model.OrderStatusPending); err != nil {
			return err
		}

		const selectQuery = `SELECT code, status, amount, description, license_key, created_at, completed_at
                             FROM orders WHERE code=$1`
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, selectQuery, code))
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT code, status, amount, description, license_key, created_at, completed_at
                   FROM orders WHERE status=$1 AND created_at < $2 ORDER BY created_at LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	const query = `SELECT code, status, amount, description, license_key, created_at, completed_at
                   FROM orders ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// --- LicenseRepository implementation ---

func (r *licenseRepository) Create(ctx context.Context, license *model.License) (*model.License, error) {
	const query = `INSERT INTO licenses (key, order_code, status, device_hash, expires_at, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (key) DO NOTHING
                   RETURNING key`
	var key string
	err := r.storage.pool.QueryRow(ctx, query,
		license.Key, license.OrderCode, license.Status, license.DeviceHash, license.ExpiresAt, license.CreatedAt,
	).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	clone := *license
	return &clone, nil
}

func (r *licenseRepository) GetByKey(ctx context.Context, key string) (*model.License, error) {
	const query = `SELECT key, order_code, status, device_hash, expires_at, created_at, activated_at
                   FROM licenses WHERE key=$1`
	return scanLicense(r.storage.pool.QueryRow(ctx, query, key))
}

func (r *licenseRepository) GetByOrder(ctx context.Context, orderCode int64) (*model.License, error) {
	const query = `SELECT key, order_code, status, device_hash, expires_at, created_at, activated_at
                   FROM licenses WHERE order_code=$1`
	return scanLicense(r.storage.pool.QueryRow(ctx, query, orderCode))
}

func (r *licenseRepository) GetByDevice(ctx context.Context, deviceHash string) (*model.License, error) {
	const query = `SELECT key, order_code, status, device_hash, expires_at, created_at, activated_at
                   FROM licenses WHERE device_hash=$1`
	return scanLicense(r.storage.pool.QueryRow(ctx, query, deviceHash))
}

func (r *licenseRepository) Update(ctx context.Context, license *model.License) (*model.License, error) {
	const query = `UPDATE licenses SET status=$1, device_hash=$2, activated_at=$3 WHERE key=$4
                   RETURNING key, order_code, status, device_hash, expires_at, created_at, activated_at`
	return scanLicense(r.storage.pool.QueryRow(ctx, query,
		license.Status, license.DeviceHash, license.ActivatedAt, license.Key,
	))
}

func (r *licenseRepository) List(ctx context.Context) ([]model.License, error) {
	const query = `SELECT key, order_code, status, device_hash, expires_at, created_at, activated_at
                   FROM licenses ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.License
	for rows.Next() {
		var l model.License
		if err := rows.Scan(&l.Key, &l.OrderCode, &l.Status, &l.DeviceHash, &l.ExpiresAt, &l.CreatedAt, &l.ActivatedAt); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(&order.Code, &order.Status, &order.Amount, &order.Description, &order.LicenseKey, &order.CreatedAt, &order.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.Code, &o.Status, &o.Amount, &o.Description, &o.LicenseKey, &o.CreatedAt, &o.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanLicense(row pgx.Row) (*model.License, error) {
	var l model.License
	err := row.Scan(&l.Key, &l.OrderCode, &l.Status, &l.DeviceHash, &l.ExpiresAt, &l.CreatedAt, &l.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// WithinTransaction runs fn inside a transaction with commit/rollback handling.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(tx)
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
