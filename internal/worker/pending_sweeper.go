package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/packlab/packstore/internal/adapter/payos"
	"github.com/packlab/packstore/internal/domain/model"
)

// LicensingFacade exposes the subset of application functionality required by the sweeper.
type LicensingFacade interface {
	StalePendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error)
	PaymentStatus(ctx context.Context, orderCode int64) (*model.PaymentLink, error)
	ConfirmPayment(ctx context.Context, orderCode int64, amount int64) (*model.License, error)
}

// PendingSweeper re-checks stale pending orders against the provider and
// feeds paid ones through the same confirmation path as the redirect and
// webhook channels. It recovers orders whose notifications never arrived.
type PendingSweeper struct {
	facade       LicensingFacade
	pollInterval time.Duration
	minAge       time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPendingSweeper constructs sweeper worker pool.
func NewPendingSweeper(facade LicensingFacade, pollInterval, minAge time.Duration, batchSize, workers int, logger *slog.Logger) *PendingSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PendingSweeper{
		facade:       facade,
		pollInterval: pollInterval,
		minAge:       minAge,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *PendingSweeper) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PendingSweeper) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PendingSweeper) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PendingSweeper) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.StalePendingOrders(ctx, p.minAge, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PendingSweeper) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PendingSweeper) handleOrder(ctx context.Context, order model.Order) {
	link, err := p.facade.PaymentStatus(ctx, order.Code)
	if err != nil {
		var tooMany payos.TooManyRequestsError
		if errors.As(err, &tooMany) {
			p.logger.Warn("payos rate limited", slog.Duration("retry_after", tooMany.RetryAfter))
			time.Sleep(tooMany.RetryAfter)
			return
		}
		p.logger.Error("payment status fetch failed", slog.Int64("order", order.Code), slog.String("error", err.Error()))
		return
	}

	if link.Status != model.PaymentLinkStatusPaid {
		return
	}

	amount := link.AmountPaid
	if amount == 0 {
		amount = order.Amount
	}
	if _, err := p.facade.ConfirmPayment(ctx, order.Code, amount); err != nil {
		p.logger.Error("sweeper confirmation failed", slog.Int64("order", order.Code), slog.String("error", err.Error()))
		return
	}
	p.logger.Info("recovered missed confirmation", slog.Int64("order", order.Code))
}
