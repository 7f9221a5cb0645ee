package repository

import (
	"context"
	"time"

	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IssuedTicketRepository interface {
	ListByOrderID(ctx context.Context, orderID int) ([]*model.IssuedTicket, error)
	FindByCodeForEvent(ctx context.Context, eventID int, code string) (*model.IssuedTicket, error)
	FindByCode(ctx context.Context, code string) (*model.IssuedTicket, error)
	// MarkCheckedIn 只在尚未檢票時生效，回傳 false 表示早已檢票過
	MarkCheckedIn(ctx context.Context, id int, at time.Time) (bool, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.IssuedTicket) error
}

type IssuedTicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewIssuedTicketRepository(pool *pgxpool.Pool) IssuedTicketRepository {
	return &IssuedTicketRepositoryImpl{
		pool: pool,
	}
}

// CreateBatch 與訂單轉為 paid 同一筆交易：redemption_code 撞上唯一索引
// 代表產碼邏輯有 bug，整筆交易回滾。
func (r *IssuedTicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.IssuedTicket) error {
	query := `
		INSERT INTO issued_tickets (order_id, ticket_type_id, redemption_code)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	for _, t := range tickets {
		err := tx.QueryRow(ctx, query, t.OrderID, t.TicketTypeID, t.RedemptionCode).
			Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanIssuedTicket(row pgx.Row) (*model.IssuedTicket, error) {
	var t model.IssuedTicket
	err := row.Scan(
		&t.ID,
		&t.OrderID,
		&t.TicketTypeID,
		&t.RedemptionCode,
		&t.CheckedIn,
		&t.CheckedInAt,
		&t.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *IssuedTicketRepositoryImpl) ListByOrderID(ctx context.Context, orderID int) ([]*model.IssuedTicket, error) {
	query := `
		SELECT id, order_id, ticket_type_id, redemption_code, checked_in, checked_in_at, created_at
		FROM issued_tickets
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.IssuedTicket, 0)
	for rows.Next() {
		t, err := scanIssuedTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *IssuedTicketRepositoryImpl) FindByCodeForEvent(ctx context.Context, eventID int, code string) (*model.IssuedTicket, error) {
	query := `
		SELECT it.id, it.order_id, it.ticket_type_id, it.redemption_code,
		       it.checked_in, it.checked_in_at, it.created_at
		FROM issued_tickets it
		JOIN ticket_types tt ON tt.id = it.ticket_type_id
		WHERE it.redemption_code = $1 AND tt.event_id = $2
	`

	return scanIssuedTicket(r.pool.QueryRow(ctx, query, code, eventID))
}

func (r *IssuedTicketRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.IssuedTicket, error) {
	query := `
		SELECT id, order_id, ticket_type_id, redemption_code, checked_in, checked_in_at, created_at
		FROM issued_tickets
		WHERE redemption_code = $1
	`

	return scanIssuedTicket(r.pool.QueryRow(ctx, query, code))
}

func (r *IssuedTicketRepositoryImpl) MarkCheckedIn(ctx context.Context, id int, at time.Time) (bool, error) {
	query := `
		UPDATE issued_tickets
		SET checked_in = TRUE, checked_in_at = $1
		WHERE id = $2 AND checked_in = FALSE
	`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
