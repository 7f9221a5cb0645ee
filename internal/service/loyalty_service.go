package service

import (
	"context"

	"eventgo-ticketing/config"
	"eventgo-ticketing/internal/cache"
	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/repository"
	"eventgo-ticketing/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoyaltyService interface {
	// Rank 由歷史 paid 訂單的總消費與張數推導等級，無副作用
	Rank(ctx context.Context, buyerID int) (model.LoyaltyRank, error)
	// Invalidate 付款成功後消費彙總改變，快取等級作廢
	Invalidate(ctx context.Context, buyerID int)
}

type LoyaltyServiceImpl struct {
	repo      repository.OrderRepository
	rankCache cache.LoyaltyRankCache
	cfg       config.BookingConfig
}

// NewLoyaltyService rankCache 可為 nil（測試或未接 Redis 時直接查 DB）
func NewLoyaltyService(repo repository.OrderRepository, rankCache cache.LoyaltyRankCache, cfg config.BookingConfig) LoyaltyService {
	return &LoyaltyServiceImpl{
		repo:      repo,
		rankCache: rankCache,
		cfg:       cfg,
	}
}

func (s *LoyaltyServiceImpl) Rank(ctx context.Context, buyerID int) (model.LoyaltyRank, error) {
	if s.rankCache != nil {
		rank, found, err := s.rankCache.Get(ctx, buyerID)
		if err != nil {
			// 快取故障只降級，不影響主流程
			logger.WithComponent("loyalty").Warn("rank cache get failed", zap.Int("buyer_id", buyerID), zap.Error(err))
		} else if found {
			return rank, nil
		}
	}

	agg, err := s.repo.GetLoyaltyAggregates(ctx, buyerID)
	if err != nil {
		return "", err
	}

	rank := s.rankFor(agg)

	if s.rankCache != nil {
		if err := s.rankCache.Set(ctx, buyerID, rank); err != nil {
			logger.WithComponent("loyalty").Warn("rank cache set failed", zap.Int("buyer_id", buyerID), zap.Error(err))
		}
	}

	return rank, nil
}

func (s *LoyaltyServiceImpl) Invalidate(ctx context.Context, buyerID int) {
	if s.rankCache == nil {
		return
	}
	if err := s.rankCache.Invalidate(ctx, buyerID); err != nil {
		logger.WithComponent("loyalty").Warn("rank cache invalidate failed", zap.Int("buyer_id", buyerID), zap.Error(err))
	}
}

func (s *LoyaltyServiceImpl) rankFor(agg *repository.LoyaltyAggregates) model.LoyaltyRank {
	switch {
	case agg.TotalSpend.GreaterThanOrEqual(decimal.NewFromInt(s.cfg.GoldSpend)) ||
		agg.TicketCount >= s.cfg.GoldTickets:
		return model.LoyaltyRankGold
	case agg.TotalSpend.GreaterThanOrEqual(decimal.NewFromInt(s.cfg.SilverSpend)) ||
		agg.TicketCount >= s.cfg.SilverTickets:
		return model.LoyaltyRankSilver
	case agg.TotalSpend.IsPositive() || agg.TicketCount > 0:
		return model.LoyaltyRankBronze
	default:
		return model.LoyaltyRankNone
	}
}
