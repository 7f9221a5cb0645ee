package cache

import (
	"context"
	"fmt"
	"time"

	"eventgo-ticketing/internal/model"

	"github.com/redis/go-redis/v9"
)

// DefaultRankTTL 等級是歷史彙總的純函數，短暫快取即可
const DefaultRankTTL = time.Minute

// LoyaltyRankCache 買家等級的短 TTL 快取
type LoyaltyRankCache interface {
	// Get 回傳 (rank, found, error)；cache miss 不是錯誤
	Get(ctx context.Context, buyerID int) (model.LoyaltyRank, bool, error)
	Set(ctx context.Context, buyerID int, rank model.LoyaltyRank) error
	Invalidate(ctx context.Context, buyerID int) error
}

type LoyaltyRankCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLoyaltyRankCache(client *redis.Client, ttl time.Duration) LoyaltyRankCache {
	if ttl <= 0 {
		ttl = DefaultRankTTL
	}
	return &LoyaltyRankCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *LoyaltyRankCacheImpl) key(buyerID int) string {
	return fmt.Sprintf("buyer:%d:rank", buyerID)
}

func (c *LoyaltyRankCacheImpl) Get(ctx context.Context, buyerID int) (model.LoyaltyRank, bool, error) {
	val, err := c.client.Get(ctx, c.key(buyerID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	rank := model.LoyaltyRank(val)
	if !rank.IsValid() {
		// 快取內容壞掉就當 miss，重算一次
		return "", false, nil
	}
	return rank, true, nil
}

func (c *LoyaltyRankCacheImpl) Set(ctx context.Context, buyerID int, rank model.LoyaltyRank) error {
	return c.client.Set(ctx, c.key(buyerID), string(rank), c.ttl).Err()
}

func (c *LoyaltyRankCacheImpl) Invalidate(ctx context.Context, buyerID int) error {
	return c.client.Del(ctx, c.key(buyerID)).Err()
}
