package services

import (
	"context"

	"eventgo-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type LoyaltyServiceMock struct {
	mock.Mock
}

func NewLoyaltyServiceMock() *LoyaltyServiceMock {
	return &LoyaltyServiceMock{}
}

func (m *LoyaltyServiceMock) Rank(ctx context.Context, buyerID int) (model.LoyaltyRank, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).(model.LoyaltyRank), args.Error(1)
}

func (m *LoyaltyServiceMock) Invalidate(ctx context.Context, buyerID int) {
	m.Called(ctx, buyerID)
}
