package service

import (
	"context"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
)

type DiscountService interface {
	// Evaluate 依序檢查：存在且屬於該活動 -> 未過期 -> 等級符合。
	// 回傳折扣百分比；所有拒絕都是一般業務結果。
	Evaluate(ctx context.Context, code string, eventID int, buyerRank model.LoyaltyRank, now time.Time) (int, error)
	Create(ctx context.Context, d *model.DiscountCode) (*model.DiscountCode, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.DiscountCode, error)
}

type DiscountServiceImpl struct {
	repo repository.DiscountRepository
}

func NewDiscountService(repo repository.DiscountRepository) DiscountService {
	return &DiscountServiceImpl{repo: repo}
}

func (s *DiscountServiceImpl) Evaluate(ctx context.Context, code string, eventID int, buyerRank model.LoyaltyRank, now time.Time) (int, error) {
	discount, err := s.repo.FindByCodeAndEventID(ctx, code, eventID)
	if err != nil {
		return 0, err // 不存在或不屬於該活動 -> ErrDiscountInvalid
	}

	if !discount.ExpiresAt.After(now) {
		return 0, apperrors.ErrDiscountExpired
	}

	if !discount.AppliesToRank(buyerRank) {
		return 0, apperrors.ErrDiscountRankIneligible
	}

	return discount.PercentOff, nil
}

func (s *DiscountServiceImpl) Create(ctx context.Context, d *model.DiscountCode) (*model.DiscountCode, error) {
	if d.PercentOff <= 0 || d.PercentOff > 100 {
		return nil, apperrors.ErrInvalidInput
	}
	if d.EligibleRank == "" {
		d.EligibleRank = model.LoyaltyRankNone
	}
	if !d.EligibleRank.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, d)
}

func (s *DiscountServiceImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.DiscountCode, error) {
	return s.repo.ListByEventID(ctx, eventID)
}

// ApplyDiscount 計算訂單總價：unit_price * qty * (100-percent)/100。
// 全程 decimal，四捨五入到 VND 整數（round half up），重複計算不會漂移。
func ApplyDiscount(unitPrice decimal.Decimal, quantity int, percentOff int) decimal.Decimal {
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if percentOff <= 0 {
		return total.Round(0)
	}

	factor := decimal.NewFromInt(int64(100 - percentOff)).
		Div(decimal.NewFromInt(100))
	return total.Mul(factor).Round(0)
}
