package worker

import (
	"context"
	"time"

	"eventgo-ticketing/config"
	"eventgo-ticketing/internal/service"
	"eventgo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// ExpiryWorker 週期掃描逾期未付款的訂單。
// webhook 是主要的結案路徑，這裡是保底：沒有任何通知進來的
// 訂單也要在付款期限後歸還庫存。
type ExpiryWorker interface {
	Start(ctx context.Context)
}

type ExpiryWorkerImpl struct {
	service service.OrderService
	cfg     config.BookingConfig
	log     *zap.Logger
}

func NewExpiryWorker(svc service.OrderService, cfg config.BookingConfig) ExpiryWorker {
	return &ExpiryWorkerImpl{
		service: svc,
		cfg:     cfg,
		log:     logger.WithComponent("expiry_worker"),
	}
}

func (w *ExpiryWorkerImpl) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

func (w *ExpiryWorkerImpl) sweep(ctx context.Context) {
	expired, err := w.service.ExpireDueOrders(ctx, time.Now().UTC(), w.cfg.SweepBatch)
	if err != nil {
		w.log.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		w.log.Info("expiry sweep finished", zap.Int("expired", expired))
	}
}
