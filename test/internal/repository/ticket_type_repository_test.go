package repository

import (
	"context"
	"testing"

	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTypeRepository_DecrementStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTicketTypeRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.DecrementStock(ctx, tx, ttID, 3))
		require.NoError(t, tx.Commit(ctx))

		tt, err := repo.FindByID(ctx, ttID)
		require.NoError(t, err)
		assert.Equal(t, 7, tt.QuantityAvailable)
		assert.Equal(t, 10, tt.TotalStock)
	})

	t.Run("Failed - ErrInsufficientStock leaves row untouched", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 2)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.DecrementStock(ctx, tx, ttID, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
		tx.Rollback(ctx)

		tt, err := repo.FindByID(ctx, ttID)
		require.NoError(t, err)
		assert.Equal(t, 2, tt.QuantityAvailable)
	})
}

func TestTicketTypeRepository_IncrementStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTicketTypeRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.DecrementStock(ctx, tx, ttID, 4))
		require.NoError(t, repo.IncrementStock(ctx, tx, ttID, 4))
		require.NoError(t, tx.Commit(ctx))

		tt, err := repo.FindByID(ctx, ttID)
		require.NoError(t, err)
		assert.Equal(t, 10, tt.QuantityAvailable)
	})
}

func TestTicketTypeRepository_AddStock(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTicketTypeRepository(testDB)

	t.Run("Success - grows both totals", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.AddStock(ctx, tx, ttID, 5))
		require.NoError(t, tx.Commit(ctx))

		tt, err := repo.FindByID(ctx, ttID)
		require.NoError(t, err)
		assert.Equal(t, 15, tt.TotalStock)
		assert.Equal(t, 15, tt.QuantityAvailable)
	})
}

func TestTicketTypeRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTicketTypeRepository(testDB)

	t.Run("Soft delete hides from finders", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)

		require.NoError(t, repo.Delete(ctx, ttID))

		_, err := repo.FindByID(ctx, ttID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrTicketTypeNotFound)

		list, err := repo.ListByEventID(ctx, eventID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
