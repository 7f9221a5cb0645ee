package services

import (
	"context"

	"eventgo-ticketing/internal/payment"
	"eventgo-ticketing/internal/service"

	"github.com/stretchr/testify/mock"
)

type ReconcileServiceMock struct {
	mock.Mock
}

func NewReconcileServiceMock() *ReconcileServiceMock {
	return &ReconcileServiceMock{}
}

func (m *ReconcileServiceMock) PayOrder(ctx context.Context, orderID int) (*payment.Charge, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

func (m *ReconcileServiceMock) HandleWebhook(ctx context.Context, payload []byte, signature string) (*service.WebhookOutcome, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WebhookOutcome), args.Error(1)
}

func (m *ReconcileServiceMock) CheckStatus(ctx context.Context, orderID int) (*service.WebhookOutcome, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WebhookOutcome), args.Error(1)
}
