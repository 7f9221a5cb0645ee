package repository

import (
	"context"

	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DiscountRepository interface {
	Create(ctx context.Context, d *model.DiscountCode) (*model.DiscountCode, error)
	// FindByCodeAndEventID 折扣碼必須屬於指定活動，否則視為不存在
	FindByCodeAndEventID(ctx context.Context, code string, eventID int) (*model.DiscountCode, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.DiscountCode, error)
}

type DiscountRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewDiscountRepository(pool *pgxpool.Pool) DiscountRepository {
	return &DiscountRepositoryImpl{
		pool: pool,
	}
}

func scanDiscount(row pgx.Row) (*model.DiscountCode, error) {
	var d model.DiscountCode
	err := row.Scan(
		&d.ID,
		&d.EventID,
		&d.Code,
		&d.PercentOff,
		&d.ExpiresAt,
		&d.EligibleRank,
		&d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrDiscountInvalid
		}
		return nil, err
	}
	return &d, nil
}

func (r *DiscountRepositoryImpl) Create(ctx context.Context, d *model.DiscountCode) (*model.DiscountCode, error) {
	query := `
		INSERT INTO discount_codes (event_id, code, percent_off, expires_at, eligible_rank)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_id, code, percent_off, expires_at, eligible_rank, created_at
	`

	return scanDiscount(r.pool.QueryRow(ctx, query,
		d.EventID, d.Code, d.PercentOff, d.ExpiresAt, d.EligibleRank,
	))
}

func (r *DiscountRepositoryImpl) FindByCodeAndEventID(ctx context.Context, code string, eventID int) (*model.DiscountCode, error) {
	query := `
		SELECT id, event_id, code, percent_off, expires_at, eligible_rank, created_at
		FROM discount_codes
		WHERE code = $1 AND event_id = $2
	`

	return scanDiscount(r.pool.QueryRow(ctx, query, code, eventID))
}

func (r *DiscountRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.DiscountCode, error) {
	query := `
		SELECT id, event_id, code, percent_off, expires_at, eligible_rank, created_at
		FROM discount_codes
		WHERE event_id = $1
		ORDER BY expires_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discounts := make([]*model.DiscountCode, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return discounts, nil
}
