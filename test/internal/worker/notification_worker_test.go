package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/queue"
	"eventgo-ticketing/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier 記錄投遞內容，可設定前 failFirst 次失敗
type recordingNotifier struct {
	mu        sync.Mutex
	delivered []*model.Notification
	failFirst int
}

func (r *recordingNotifier) Deliver(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFirst > 0 {
		r.failFirst--
		return errors.New("delivery failed")
	}
	r.delivered = append(r.delivered, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

func TestNotificationWorker_DeliversMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewNotificationQueue(10)
	notifier := &recordingNotifier{}
	w := worker.NewNotificationWorker(notifier, q)

	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.Publish(ctx, &model.Notification{BuyerID: 1, Message: "Order #1 paid, 1 ticket(s) issued"}))
	require.NoError(t, q.Publish(ctx, &model.Notification{BuyerID: 2, Message: "Order #2 expired before payment completed"}))

	assert.Eventually(t, func() bool {
		return notifier.count() == 2
	}, 3*time.Second, 50*time.Millisecond)
}

func TestNotificationWorker_RequeuesOnFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewNotificationQueue(10)
	notifier := &recordingNotifier{failFirst: 1}
	w := worker.NewNotificationWorker(notifier, q)

	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.Publish(ctx, &model.Notification{BuyerID: 1, Message: "Order #1 failed: declined"}))

	// 第一次投遞失敗 Nack(true) 重回隊列,第二次成功
	assert.Eventually(t, func() bool {
		return notifier.count() == 1
	}, 3*time.Second, 50*time.Millisecond)
}
