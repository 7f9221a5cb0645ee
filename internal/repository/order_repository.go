package repository

import (
	"context"
	"fmt"
	"time"

	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, buyer_id, ticket_type_id, quantity, unit_price,
		discount_code, discount_percent, total_amount, payment_method,
		status, active, created_at, expires_at, updated_at`

// LoyaltyAggregates 會員等級計算用的唯讀彙總（只看 paid 訂單）
type LoyaltyAggregates struct {
	TotalSpend  decimal.Decimal
	TicketCount int
}

type OrderRepository interface {
	FindByID(ctx context.Context, id int) (*model.Order, error)
	ListByBuyerID(ctx context.Context, buyerID int) ([]*model.Order, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]int, error)
	GetLoyaltyAggregates(ctx context.Context, buyerID int) (*LoyaltyAggregates, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.OrderStatus, active bool) (*model.Order, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.TicketTypeID,
		&order.Quantity,
		&order.UnitPrice,
		&order.DiscountCode,
		&order.DiscountPercent,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.Status,
		&order.Active,
		&order.CreatedAt,
		&order.ExpiresAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create 只接受交易內呼叫：訂單 insert 與庫存扣減必須同生共死
func (r *OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error) {
	query := fmt.Sprintf(`
		INSERT INTO orders (
			buyer_id, ticket_type_id, quantity, unit_price,
			discount_code, discount_percent, total_amount, payment_method,
			status, active, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, orderColumns)

	created, err := scanOrder(tx.QueryRow(ctx, query,
		order.BuyerID, order.TicketTypeID, order.Quantity, order.UnitPrice,
		order.DiscountCode, order.DiscountPercent, order.TotalAmount, order.PaymentMethod,
		order.Status, order.Active, order.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE id = $1
	`, orderColumns)

	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

// FindByIDWithLock webhook 與過期掃描可能同時處理同一張訂單，
// 狀態與 expires_at 的檢查必須在拿到 row lock 之後進行。
func (r *OrderRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderColumns)

	return scanOrder(tx.QueryRow(ctx, query, id))
}

func (r *OrderRepositoryImpl) ListByBuyerID(ctx context.Context, buyerID int) ([]*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`, orderColumns)

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListExpiredPending 給過期掃描用，只回傳 id，轉換仍走狀態機單筆加鎖
func (r *OrderRepositoryImpl) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]int, error) {
	query := `
		SELECT id
		FROM orders
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.OrderStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *OrderRepositoryImpl) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	id int,
	status model.OrderStatus,
	active bool,
) (*model.Order, error) {
	query := fmt.Sprintf(`
		UPDATE orders
		SET status = $1, active = $2, updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, status, active, time.Now().UTC(), id))
	if err != nil {
		if err == apperrors.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (r *OrderRepositoryImpl) GetLoyaltyAggregates(ctx context.Context, buyerID int) (*LoyaltyAggregates, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(quantity), 0)
		FROM orders
		WHERE buyer_id = $1 AND status = $2
	`

	agg := &LoyaltyAggregates{}
	err := r.pool.QueryRow(ctx, query, buyerID, model.OrderStatusPaid).Scan(
		&agg.TotalSpend,
		&agg.TicketCount,
	)
	if err != nil {
		return nil, err
	}
	return agg, nil
}
