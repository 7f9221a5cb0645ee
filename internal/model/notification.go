package model

import "time"

// Notification 寄給買家的通知，投遞為 fire-and-forget
type Notification struct {
	BuyerID   int       `json:"buyer_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
