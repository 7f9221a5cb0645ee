package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simulates real scenario: 100 buyers simultaneously competing for 10 tickets
func TestConcurrentOrderCreate_NoOversell(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	orderService, _ := newOrderService(t)

	concurrentBuyers := 100
	quantityPerBuyer := 1
	totalStock := 10

	eventID := createTestEvent(t, "Popular Concert")
	ttID := createTestTicketType(t, eventID, "GA", 100000, totalStock)

	var wg sync.WaitGroup
	successCount := 0
	stockFailCount := 0
	otherFailCount := 0
	var mu sync.Mutex

	for i := 0; i < concurrentBuyers; i++ {
		wg.Add(1)
		go func(buyerID int) {
			defer wg.Done()

			req := model.CreateOrderRequest{
				BuyerID:       buyerID,
				TicketTypeID:  ttID,
				Quantity:      quantityPerBuyer,
				PaymentMethod: "momo",
			}

			_, err := orderService.CreateOrder(ctx, eventID, req)

			mu.Lock()
			switch {
			case err == nil:
				successCount++
			case errors.Is(err, apperrors.ErrInsufficientStock):
				stockFailCount++
			default:
				otherFailCount++
			}
			mu.Unlock()
		}(i + 1)
	}

	wg.Wait()

	t.Logf("100 buyers competing for 10 tickets - Success: %d, StockFail: %d, OtherFail: %d",
		successCount, stockFailCount, otherFailCount)

	assert.Equal(t, totalStock, successCount, "Successful orders should equal total stock")
	assert.Equal(t, concurrentBuyers-totalStock, stockFailCount, "90 buyers should fail on stock")
	assert.Equal(t, 0, otherFailCount, "No unexpected errors")
	assert.Equal(t, 0, getAvailableStock(t, ttID), "Available stock should be 0")
}

// webhook 與過期掃描同時處理同一張訂單，只能有一邊贏
func TestConcurrentMarkPaidAndExpire_SingleWinner(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	orderService, _ := newOrderService(t)

	eventID := createTestEvent(t, "Popular Concert")
	ttID := createTestTicketTypeWithStock(t, eventID, "GA", 100000, 10, 9)
	orderID := createTestOrder(t, 1, ttID, 1, 100000, model.OrderStatusPending, time.Now().Add(-time.Second))

	var wg sync.WaitGroup
	var paidErr, expireErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, paidErr = orderService.MarkPaid(ctx, orderID)
	}()
	go func() {
		defer wg.Done()
		_, expireErr = orderService.ExpireIfDue(ctx, orderID, time.Now())
	}()
	wg.Wait()

	// 訂單已過 expires_at：兩條路徑都只能把它送進 failed，
	// 先到的那個完成轉換，後到的拿 ErrOrderAlreadyTerminal 或看到已終結
	order, err := orderService.GetOrderByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFailed, order.Status)
	assert.Equal(t, 10, getAvailableStock(t, ttID), "stock restored exactly once")

	// MarkPaid 不可能成功
	require.Error(t, paidErr)
	assert.True(t,
		errors.Is(paidErr, apperrors.ErrOrderExpired) || errors.Is(paidErr, apperrors.ErrOrderAlreadyTerminal),
		"unexpected MarkPaid error: %v", paidErr)
	assert.NoError(t, expireErr)
}
