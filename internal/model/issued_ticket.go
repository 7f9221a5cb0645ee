package model

import "time"

// IssuedTicket 付款成功後發出的入場憑證，每單位一張
type IssuedTicket struct {
	ID             int        `json:"id" db:"id"`
	OrderID        int        `json:"order_id" db:"order_id"`
	TicketTypeID   int        `json:"ticket_type_id" db:"ticket_type_id"`
	RedemptionCode string     `json:"redemption_code" db:"redemption_code"`
	CheckedIn      bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// CheckInResult 檢票結果
type CheckInResult struct {
	OrderID          int    `json:"order_id"`
	RedemptionCode   string `json:"redemption_code"`
	AlreadyCheckedIn bool   `json:"already_checked_in"`
}
