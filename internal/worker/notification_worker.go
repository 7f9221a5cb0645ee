package worker

import (
	"context"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/queue"
	"eventgo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 通知的最終出口。正式環境可以換成 email 或推播，
// 預設實作只寫 log。
type Notifier interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier() Notifier {
	return &LogNotifier{log: logger.WithComponent("notifier")}
}

func (l *LogNotifier) Deliver(_ context.Context, n *model.Notification) error {
	l.log.Info("notification delivered",
		zap.Int("buyer_id", n.BuyerID),
		zap.String("message", n.Message))
	return nil
}

type NotificationWorker interface {
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	notifier Notifier
	queue    queue.NotificationQueue
}

func NewNotificationWorker(notifier Notifier, queue queue.NotificationQueue) NotificationWorker {
	return &NotificationWorkerImpl{
		notifier: notifier,
		queue:    queue,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.notifier.Deliver(ctx, msg.Data); err != nil {
				// 投遞失敗留在 pending，由 auto claim 重試
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
