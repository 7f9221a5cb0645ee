package service

import (
	"context"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketTypeService interface {
	List(ctx context.Context) ([]*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error)
	GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Create(ctx context.Context, eventID uuid.UUID, tt *model.TicketType) (*model.TicketType, error)
	UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams) (*model.TicketType, error)
	DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error
	// AddStock 補票：total_stock 與 quantity_available 同步增加
	AddStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) (*model.TicketType, error)
}

type TicketTypeServiceImpl struct {
	pool      *pgxpool.Pool
	repo      repository.TicketTypeRepository
	eventRepo repository.EventRepository
}

func NewTicketTypeService(pool *pgxpool.Pool, repo repository.TicketTypeRepository, eventRepo repository.EventRepository) TicketTypeService {
	return &TicketTypeServiceImpl{pool: pool, repo: repo, eventRepo: eventRepo}
}

func (s *TicketTypeServiceImpl) List(ctx context.Context) ([]*model.TicketType, error) {
	return s.repo.List(ctx)
}

func (s *TicketTypeServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID)
}

func (s *TicketTypeServiceImpl) GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	return s.repo.FindByTicketTypeID(ctx, ticketTypeID)
}

func (s *TicketTypeServiceImpl) Create(ctx context.Context, eventID uuid.UUID, tt *model.TicketType) (*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if tt.TotalStock < 0 || tt.UnitPrice.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}
	tt.EventID = event.ID
	tt.TicketTypeID = uuid.New()
	tt.QuantityAvailable = tt.TotalStock
	return s.repo.Create(ctx, tt)
}

func (s *TicketTypeServiceImpl) UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams) (*model.TicketType, error) {
	tt, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, tt.ID, params)
}

func (s *TicketTypeServiceImpl) DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error {
	tt, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tt.ID)
}

func (s *TicketTypeServiceImpl) AddStock(ctx context.Context, ticketTypeID uuid.UUID, quantity int) (*model.TicketType, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tt, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	locked, err := s.repo.FindByIDWithLock(ctx, tx, tt.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddStock(ctx, tx, locked.ID, quantity); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, tt.ID)
}
