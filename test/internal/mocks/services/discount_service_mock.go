package services

import (
	"context"
	"time"

	"eventgo-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type DiscountServiceMock struct {
	mock.Mock
}

func NewDiscountServiceMock() *DiscountServiceMock {
	return &DiscountServiceMock{}
}

func (m *DiscountServiceMock) Evaluate(ctx context.Context, code string, eventID int, buyerRank model.LoyaltyRank, now time.Time) (int, error) {
	args := m.Called(ctx, code, eventID, buyerRank, now)
	return args.Int(0), args.Error(1)
}

func (m *DiscountServiceMock) Create(ctx context.Context, d *model.DiscountCode) (*model.DiscountCode, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountCode), args.Error(1)
}

func (m *DiscountServiceMock) ListByEventID(ctx context.Context, eventID int) ([]*model.DiscountCode, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DiscountCode), args.Error(1)
}
