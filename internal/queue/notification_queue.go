package queue

import (
	"context"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.Notification
	Ack  func()
	Nack func(requeue bool)
}

type NotificationQueue interface {
	// 發送通知到隊列，投遞為 fire-and-forget
	Publish(ctx context.Context, n *model.Notification) error
	// 訂閱通知隊列
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type NotificationQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.Notification
}

func NewNotificationQueue(bufferSize int) NotificationQueue {
	return &NotificationQueueImpl{
		ch: make(chan *model.Notification, bufferSize),
	}
}

func (q *NotificationQueueImpl) Publish(ctx context.Context, n *model.Notification) error {
	select {
	case q.ch <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *NotificationQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 Notification 包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: n,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// 重回隊列不能卡住消費者，緩衝滿就丟棄
						select {
						case q.ch <- n:
						default:
							logger.WithComponent("mq").Warn("requeue dropped: buffer full",
								zap.Int("buyer_id", n.BuyerID))
						}
					},
				}
			}
		}
	}()

	return out, nil
}
