package repository

import (
	"context"
	"testing"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuedTicketRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewIssuedTicketRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)
		orderID := createTestOrder(t, 1, ttID, 2, 100000, model.OrderStatusPaid, time.Now().Add(10*time.Minute))

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		tickets := []*model.IssuedTicket{
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_1_1_1"},
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_1_1_2"},
		}
		require.NoError(t, repo.CreateBatch(ctx, tx, tickets))
		require.NoError(t, tx.Commit(ctx))

		listed, err := repo.ListByOrderID(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
		for _, ticket := range listed {
			assert.NotZero(t, ticket.ID)
			assert.False(t, ticket.CheckedIn)
		}
	})

	t.Run("Failed - duplicate code aborts whole batch", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)
		orderID := createTestOrder(t, 1, ttID, 2, 100000, model.OrderStatusPaid, time.Now().Add(10*time.Minute))

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		tickets := []*model.IssuedTicket{
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_DUP"},
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_DUP"},
		}
		err = repo.CreateBatch(ctx, tx, tickets)
		require.Error(t, err)
		tx.Rollback(ctx)

		listed, err := repo.ListByOrderID(ctx, orderID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

func TestIssuedTicketRepository_FindByCodeForEvent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewIssuedTicketRepository(testDB)

	t.Run("Scopes lookup to the event", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventA := createTestEvent(t, "Concert A")
		eventB := createTestEvent(t, "Concert B")
		ttID := createTestTicketType(t, eventA, "VIP", 100000, 10)
		orderID := createTestOrder(t, 1, ttID, 1, 100000, model.OrderStatusPaid, time.Now().Add(10*time.Minute))

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		require.NoError(t, repo.CreateBatch(ctx, tx, []*model.IssuedTicket{
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_A_1"},
		}))
		require.NoError(t, tx.Commit(ctx))

		found, err := repo.FindByCodeForEvent(ctx, eventA, "QR_A_1")
		require.NoError(t, err)
		assert.Equal(t, orderID, found.OrderID)

		_, err = repo.FindByCodeForEvent(ctx, eventB, "QR_A_1")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestIssuedTicketRepository_MarkCheckedIn(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewIssuedTicketRepository(testDB)

	t.Run("First scan updates, second does not", func(t *testing.T) {
		defer setupTestWithTruncate(t)()

		eventID := createTestEvent(t, "Concert A")
		ttID := createTestTicketType(t, eventID, "VIP", 100000, 10)
		orderID := createTestOrder(t, 1, ttID, 1, 100000, model.OrderStatusPaid, time.Now().Add(10*time.Minute))

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		require.NoError(t, repo.CreateBatch(ctx, tx, []*model.IssuedTicket{
			{OrderID: orderID, TicketTypeID: ttID, RedemptionCode: "QR_SCAN"},
		}))
		require.NoError(t, tx.Commit(ctx))

		ticket, err := repo.FindByCode(ctx, "QR_SCAN")
		require.NoError(t, err)

		updated, err := repo.MarkCheckedIn(ctx, ticket.ID, time.Now())
		require.NoError(t, err)
		assert.True(t, updated)

		again, err := repo.MarkCheckedIn(ctx, ticket.ID, time.Now())
		require.NoError(t, err)
		assert.False(t, again)

		ticket, err = repo.FindByCode(ctx, "QR_SCAN")
		require.NoError(t, err)
		assert.True(t, ticket.CheckedIn)
		require.NotNil(t, ticket.CheckedInAt)
	})
}
