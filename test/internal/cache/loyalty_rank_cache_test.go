package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventgo-ticketing/internal/cache"
	"eventgo-ticketing/internal/model"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyRankCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, time.Minute)

		mock.ExpectGet("buyer:7:rank").SetVal("gold")

		rank, found, err := c.Get(ctx, 7)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, model.LoyaltyRankGold, rank)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, time.Minute)

		mock.ExpectGet("buyer:7:rank").RedisNil()

		_, found, err := c.Get(ctx, 7)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("corrupt value treated as miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, time.Minute)

		mock.ExpectGet("buyer:7:rank").SetVal("platinum")

		_, found, err := c.Get(ctx, 7)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("redis error surfaces", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, time.Minute)

		mock.ExpectGet("buyer:7:rank").SetErr(errors.New("connection refused"))

		_, found, err := c.Get(ctx, 7)

		require.Error(t, err)
		assert.False(t, found)
	})
}

func TestLoyaltyRankCache_SetAndInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("set with ttl", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, 30*time.Second)

		mock.ExpectSet("buyer:7:rank", "silver", 30*time.Second).SetVal("OK")

		err := c.Set(ctx, 7, model.LoyaltyRankSilver)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate deletes key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewLoyaltyRankCache(db, time.Minute)

		mock.ExpectDel("buyer:7:rank").SetVal(1)

		err := c.Invalidate(ctx, 7)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
