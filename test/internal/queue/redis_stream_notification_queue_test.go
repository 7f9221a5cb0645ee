package queue_test

import (
	"context"
	"testing"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupStream(ctx context.Context, t *testing.T) {
	t.Helper()
	_ = testRdb.Del(ctx, queue.StreamKey).Err()
}

func testNotification(buyerID int, message string) *model.Notification {
	return &model.Notification{
		BuyerID:   buyerID,
		Message:   message,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestNewRedisStreamNotificationQueue(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	t.Run("success", func(t *testing.T) {
		q, err := queue.NewRedisStreamNotificationQueue(testRdb, "test-consumer", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("empty_consumer_id_generates_uuid", func(t *testing.T) {
		cleanupStream(ctx, t)
		q, err := queue.NewRedisStreamNotificationQueue(testRdb, "", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

func TestRedisStreamNotificationQueue_Publish(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamNotificationQueue(testRdb, "pub-test", nil)
	require.NoError(t, err)

	err = q.Publish(ctx, testNotification(1, "Order #1 paid, 2 ticket(s) issued"))
	require.NoError(t, err)
}

func TestRedisStreamNotificationQueue_Subscribe_deliversPublishedMessage(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamNotificationQueue(testRdb, "deliver-test", nil)
	require.NoError(t, err)

	n := testNotification(10, "Order #42 paid, 1 ticket(s) issued")
	require.NoError(t, q.Publish(ctx, n))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok, "應收到一筆")
		require.NotNil(t, d.Data)
		assert.Equal(t, n.BuyerID, d.Data.BuyerID)
		assert.Equal(t, n.Message, d.Data.Message)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到訊息")
	}
}

func TestRedisStreamNotificationQueue_Ack_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamNotificationQueue(testRdb, "ack-test", nil)
	require.NoError(t, err)

	n := testNotification(11, "Order #43 expired before payment completed")
	require.NoError(t, q.Publish(ctx, n))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 驗證結果:下一讀應為 channel 關閉(cancel 後),不應再收到同一筆
	cancel()
	_, ok := <-delCh
	assert.False(t, ok, "Ack 後不應再投遞;下一讀應為 channel 關閉")
}

func TestRedisStreamNotificationQueue_NackDiscard_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamNotificationQueue(testRdb, "nack-discard-test", nil)
	require.NoError(t, err)

	n := testNotification(7, "Order #44 failed: gateway declined")
	require.NoError(t, q.Publish(ctx, n))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		assert.Equal(t, n.Message, d.Data.Message)
		d.Nack(false)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 短時間內不應再收到同一筆(已丟棄)
	select {
	case d, ok := <-delCh:
		if ok && d.Data != nil && d.Data.Message == n.Message {
			t.Fatalf("Nack(false) 後不應再投遞同一筆: %s", d.Data.Message)
		}
	case <-time.After(2 * time.Second):
	}
	cancel()
}

func TestRedisStreamNotificationQueue_NackRequeue_redeliversAfterIdle(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	cfg := &queue.RedisStreamQueueConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 500 * time.Millisecond,
	}
	q, err := queue.NewRedisStreamNotificationQueue(testRdb, "nack-requeue-test", cfg)
	require.NoError(t, err)

	n := testNotification(9, "Order #45 paid, 3 ticket(s) issued")
	require.NoError(t, q.Publish(ctx, n))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		d.Nack(true)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 重試:應在約 ClaimMinIdleTime 後由 auto claim 再投遞
	select {
	case d, ok := <-delCh:
		require.True(t, ok, "Nack(true) 後應重投")
		require.NotNil(t, d.Data)
		assert.Equal(t, n.Message, d.Data.Message)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到重投")
	}
}
