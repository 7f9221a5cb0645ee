package service

import (
	"context"
	"testing"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/payment"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 完整走一輪：下單搶到最後一張 → 第二位買家被拒 → 閘道回呼入帳 → 入場掃碼
func TestBookingFlow_EndToEnd(t *testing.T) {
	defer setupTestWithTruncate(t)()
	ctx := context.Background()

	svc, gateway, orderSvc := newReconcileService(t)

	eventID := createTestEvent(t, "Concert A")
	ttID := createTestTicketType(t, eventID, "VIP", 100000, 1)

	order, err := orderSvc.CreateOrder(ctx, eventID, model.CreateOrderRequest{
		BuyerID:       7,
		TicketTypeID:  ttID,
		Quantity:      1,
		PaymentMethod: "momo",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 0, getAvailableStock(t, ttID))

	// 庫存已歸零，第二位買家吃閉門羹
	_, err = orderSvc.CreateOrder(ctx, eventID, model.CreateOrderRequest{
		BuyerID:       8,
		TicketTypeID:  ttID,
		Quantity:      1,
		PaymentMethod: "momo",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	payload := []byte(`{"resultCode":0}`)
	gateway.On("VerifySignature", payload, "sig").Return(true).Once()
	gateway.On("ParseWebhookResult", payload).Return(&payment.WebhookResult{
		OrderRef: payment.FormatOrderRef(7, order.ID), Succeeded: true,
	}, nil).Once()

	outcome, err := svc.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)
	assert.True(t, outcome.Applied)

	paid, err := orderSvc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, paid.Status)

	tickets, err := orderSvc.GetOrderTickets(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.NotEmpty(t, tickets[0].RedemptionCode)

	result, err := orderSvc.CheckIn(ctx, eventID, tickets[0].RedemptionCode)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCheckedIn)

	again, err := orderSvc.CheckIn(ctx, eventID, tickets[0].RedemptionCode)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCheckedIn)

	gateway.AssertExpectations(t)

	// 入場不影響訂單終態
	afterCheckIn, err := orderSvc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, afterCheckIn.Status)
}
