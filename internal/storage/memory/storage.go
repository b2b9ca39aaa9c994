package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
	"github.com/packlab/packstore/internal/pkg/clock"
)

// Storage keeps the ledger and registry in process memory. State is volatile
// on purpose: durable storage plugs in behind the same repository contracts.
type Storage struct {
	mu       sync.RWMutex
	orders   map[int64]*model.Order
	licenses map[string]*model.License
	byOrder  map[int64]string
	byDevice map[string]string
	clock    clock.Clock
}

type orderRepository struct {
	storage *Storage
}

type licenseRepository struct {
	storage *Storage
}

// New creates empty in-memory storage.
func New(clk clock.Clock) *Storage {
	return &Storage{
		orders:   make(map[int64]*model.Order),
		licenses: make(map[string]*model.License),
		byOrder:  make(map[int64]string),
		byDevice: make(map[string]string),
		clock:    clk,
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Licenses() repository.LicenseRepository {
	return &licenseRepository{storage: s}
}

func (r *orderRepository) Create(ctx context.Context, code int64, amount int64, description string) (*model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[code]; exists {
		return nil, domainErrors.ErrDuplicateOrder
	}

	order := &model.Order{
		Code:        code,
		Status:      model.OrderStatusPending,
		Amount:      amount,
		Description: description,
		CreatedAt:   s.clock.Now(),
	}
	s.orders[code] = order
	return cloneOrder(order), nil
}

func (r *orderRepository) Get(ctx context.Context, code int64) (*model.Order, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[code]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *orderRepository) MarkCompleted(ctx context.Context, code int64, licenseKey string) (*model.Order, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[code]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status == model.OrderStatusCompleted {
		return cloneOrder(order), nil
	}

	now := s.clock.Now()
	order.Status = model.OrderStatusCompleted
	order.LicenseKey = &licenseKey
	order.CompletedAt = &now
	return cloneOrder(order), nil
}

func (r *orderRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Order
	for _, order := range s.orders {
		if order.Status != model.OrderStatusPending || !order.CreatedAt.Before(olderThan) {
			continue
		}
		result = append(result, *cloneOrder(order))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, *cloneOrder(order))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *licenseRepository) Create(ctx context.Context, license *model.License) (*model.License, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.licenses[license.Key]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}

	stored := cloneLicense(license)
	s.licenses[stored.Key] = stored
	s.byOrder[stored.OrderCode] = stored.Key
	if stored.DeviceHash != "" {
		s.byDevice[stored.DeviceHash] = stored.Key
	}
	return cloneLicense(stored), nil
}

func (r *licenseRepository) GetByKey(ctx context.Context, key string) (*model.License, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	license, ok := s.licenses[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneLicense(license), nil
}

func (r *licenseRepository) GetByOrder(ctx context.Context, orderCode int64) (*model.License, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byOrder[orderCode]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneLicense(s.licenses[key]), nil
}

func (r *licenseRepository) GetByDevice(ctx context.Context, deviceHash string) (*model.License, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byDevice[deviceHash]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneLicense(s.licenses[key]), nil
}

func (r *licenseRepository) Update(ctx context.Context, license *model.License) (*model.License, error) {
	s := r.storage
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.licenses[license.Key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}

	if stored.DeviceHash != "" && stored.DeviceHash != license.DeviceHash {
		delete(s.byDevice, stored.DeviceHash)
	}

	stored.Status = license.Status
	stored.DeviceHash = license.DeviceHash
	stored.ActivatedAt = cloneTime(license.ActivatedAt)
	if stored.DeviceHash != "" {
		s.byDevice[stored.DeviceHash] = stored.Key
	}
	return cloneLicense(stored), nil
}

func (r *licenseRepository) List(ctx context.Context) ([]model.License, error) {
	s := r.storage
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.License, 0, len(s.licenses))
	for _, license := range s.licenses {
		result = append(result, *cloneLicense(license))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func cloneOrder(o *model.Order) *model.Order {
	clone := *o
	if o.LicenseKey != nil {
		key := *o.LicenseKey
		clone.LicenseKey = &key
	}
	clone.CompletedAt = cloneTime(o.CompletedAt)
	return &clone
}

func cloneLicense(l *model.License) *model.License {
	clone := *l
	clone.ActivatedAt = cloneTime(l.ActivatedAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
