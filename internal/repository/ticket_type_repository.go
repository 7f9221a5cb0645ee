package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketTypeColumns = `id, ticket_type_id, event_id, label, unit_price,
		total_stock, quantity_available, created_at, updated_at, deleted_at`

type TicketTypeRepository interface {
	Create(ctx context.Context, tt *model.TicketType) (*model.TicketType, error)
	List(ctx context.Context) ([]*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error)
	FindByID(ctx context.Context, id int) (*model.TicketType, error)
	FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Update(ctx context.Context, id int, params model.UpdateTicketTypeParams) (*model.TicketType, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.TicketType, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	IncrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	AddStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

func scanTicketType(row pgx.Row) (*model.TicketType, error) {
	var tt model.TicketType
	err := row.Scan(
		&tt.ID,
		&tt.TicketTypeID,
		&tt.EventID,
		&tt.Label,
		&tt.UnitPrice,
		&tt.TotalStock,
		&tt.QuantityAvailable,
		&tt.CreatedAt,
		&tt.UpdatedAt,
		&tt.DeletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &tt, nil
}

func (r *TicketTypeRepositoryImpl) Create(ctx context.Context, tt *model.TicketType) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		INSERT INTO ticket_types (
		ticket_type_id, event_id, label, unit_price, total_stock, quantity_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, ticketTypeColumns)

	return scanTicketType(r.pool.QueryRow(ctx, query,
		tt.TicketTypeID, tt.EventID, tt.Label, tt.UnitPrice,
		tt.TotalStock, tt.QuantityAvailable,
	))
}

func (r *TicketTypeRepositoryImpl) List(ctx context.Context) ([]*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, ticketTypeColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTicketTypes(rows)
}

func (r *TicketTypeRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY unit_price
	`, ticketTypeColumns)

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTicketTypes(rows)
}

func collectTicketTypes(rows pgx.Rows) ([]*model.TicketType, error) {
	ticketTypes := make([]*model.TicketType, 0)
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE id = $1 AND deleted_at IS NULL
	`, ticketTypeColumns)

	return scanTicketType(r.pool.QueryRow(ctx, query, id))
}

func (r *TicketTypeRepositoryImpl) FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE ticket_type_id = $1 AND deleted_at IS NULL
	`, ticketTypeColumns)

	return scanTicketType(r.pool.QueryRow(ctx, query, ticketTypeID))
}

// FindByIDWithLock 以 FOR UPDATE 鎖定票種 row，將同票種的併發預約序列化。
// 只能在持有交易時呼叫，鎖順序固定為 ticket_types -> orders。
func (r *TicketTypeRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, ticketTypeColumns)

	return scanTicketType(tx.QueryRow(ctx, query, id))
}

func (r *TicketTypeRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateTicketTypeParams) (*model.TicketType, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Label != nil {
		sets = append(sets, fmt.Sprintf("label = $%d", argPos))
		args = append(args, *params.Label)
		argPos++
	}

	if params.UnitPrice != nil {
		sets = append(sets, fmt.Sprintf("unit_price = $%d", argPos))
		args = append(args, *params.UnitPrice)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE ticket_types
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, ticketTypeColumns)

	return scanTicketType(r.pool.QueryRow(ctx, query, args...))
}

// DecrementStock 原子扣減庫存；條件不足時不更新任何 row，
// 呼叫端收到 ErrInsufficientStock，為正常業務結果而非故障。
func (r *TicketTypeRepositoryImpl) DecrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_types
		SET quantity_available = quantity_available - $1, updated_at = $2
		WHERE id = $3 AND quantity_available >= $1 AND deleted_at IS NULL
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientStock
	}

	return nil
}

// IncrementStock 歸還庫存。呼叫至多一次由訂單狀態機的 active 旗標保證，
// ledger 本身不做去重。
func (r *TicketTypeRepositoryImpl) IncrementStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_types
		SET quantity_available = quantity_available + $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}

func (r *TicketTypeRepositoryImpl) AddStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidInput
	}

	query := `
		UPDATE ticket_types
		SET total_stock = total_stock + $1,
			quantity_available = quantity_available + $1,
			updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}

func (r *TicketTypeRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE ticket_types
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, now, now, id)
	if err != nil {
		return err
	}

	// check if ticket type exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
