package services

import (
	"context"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/service"

	"github.com/stretchr/testify/mock"
)

type OrderServiceMock struct {
	mock.Mock
}

func NewOrderServiceMock() *OrderServiceMock {
	return &OrderServiceMock{}
}

func (m *OrderServiceMock) CreateOrder(ctx context.Context, eventID int, req model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderServiceMock) GetOrderByID(ctx context.Context, id int) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderServiceMock) ListOrdersByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *OrderServiceMock) GetOrderTickets(ctx context.Context, orderID int) ([]*model.IssuedTicket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.IssuedTicket), args.Error(1)
}

func (m *OrderServiceMock) GetTicketByCode(ctx context.Context, redemptionCode string) (*model.IssuedTicket, error) {
	args := m.Called(ctx, redemptionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssuedTicket), args.Error(1)
}

func (m *OrderServiceMock) MarkPaid(ctx context.Context, orderID int) ([]*model.IssuedTicket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.IssuedTicket), args.Error(1)
}

func (m *OrderServiceMock) MarkFailed(ctx context.Context, orderID int, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func (m *OrderServiceMock) ExpireIfDue(ctx context.Context, orderID int, now time.Time) (service.ExpireOutcome, error) {
	args := m.Called(ctx, orderID, now)
	return args.Get(0).(service.ExpireOutcome), args.Error(1)
}

func (m *OrderServiceMock) ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error) {
	args := m.Called(ctx, now, limit)
	return args.Int(0), args.Error(1)
}

func (m *OrderServiceMock) CheckIn(ctx context.Context, eventID int, redemptionCode string) (*model.CheckInResult, error) {
	args := m.Called(ctx, eventID, redemptionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckInResult), args.Error(1)
}
