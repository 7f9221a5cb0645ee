package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketType 票種（某活動底下一種可售票券，如 VIP、Standard）
type TicketType struct {
	ID                int             `json:"id" db:"id"`
	TicketTypeID      uuid.UUID       `json:"ticket_type_id" db:"ticket_type_id"`
	EventID           int             `json:"event_id" db:"event_id"`
	Label             string          `json:"label" db:"label"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalStock        int             `json:"total_stock" db:"total_stock"`
	QuantityAvailable int             `json:"quantity_available" db:"quantity_available"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (t *TicketType) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsAvailable 檢查票種是否可購買
func (t *TicketType) IsAvailable() bool {
	return !t.IsDeleted() && t.QuantityAvailable > 0
}

type UpdateTicketTypeParams struct {
	Label     *string
	UnitPrice *decimal.Decimal
}

// TicketTypeResponse 票種響應
type TicketTypeResponse struct {
	TicketTypeID      uuid.UUID       `json:"ticket_type_id"`
	EventID           int             `json:"event_id"`
	Label             string          `json:"label"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalStock        int             `json:"total_stock"`
	QuantityAvailable int             `json:"quantity_available"`
	Available         bool            `json:"available"`
}

func (t *TicketType) ToResponse() *TicketTypeResponse {
	return &TicketTypeResponse{
		TicketTypeID:      t.TicketTypeID,
		EventID:           t.EventID,
		Label:             t.Label,
		UnitPrice:         t.UnitPrice,
		TotalStock:        t.TotalStock,
		QuantityAvailable: t.QuantityAvailable,
		Available:         t.IsAvailable(),
	}
}
