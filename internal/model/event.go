package model

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus 活動狀態，由開演時間推導
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

type Event struct {
	ID          int       `json:"id" db:"id"`
	EventID     uuid.UUID `json:"event_id" db:"event_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    *string   `json:"location,omitempty" db:"location"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Status 以 now 推導活動狀態
func (e *Event) Status(now time.Time) EventStatus {
	if e.StartsAt.Before(now) {
		return EventStatusCompleted
	}
	return EventStatusUpcoming
}

type UpdateEventParams struct {
	Name        *string
	Description *string
	Location    *string
	StartsAt    *time.Time
}
