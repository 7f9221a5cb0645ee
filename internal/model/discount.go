package model

import "time"

// LoyaltyRank 會員等級，由歷史已付款消費推導
type LoyaltyRank string

const (
	LoyaltyRankNone   LoyaltyRank = "none"
	LoyaltyRankBronze LoyaltyRank = "bronze"
	LoyaltyRankSilver LoyaltyRank = "silver"
	LoyaltyRankGold   LoyaltyRank = "gold"
)

func (r LoyaltyRank) IsValid() bool {
	switch r {
	case LoyaltyRankNone, LoyaltyRankBronze, LoyaltyRankSilver, LoyaltyRankGold:
		return true
	}
	return false
}

// DiscountCode 折扣碼，訂票流程只讀不寫
type DiscountCode struct {
	ID           int         `json:"id" db:"id"`
	EventID      int         `json:"event_id" db:"event_id"`
	Code         string      `json:"code" db:"code"`
	PercentOff   int         `json:"percent_off" db:"percent_off"`
	ExpiresAt    time.Time   `json:"expires_at" db:"expires_at"`
	EligibleRank LoyaltyRank `json:"eligible_rank" db:"eligible_rank"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// AppliesToRank eligible_rank 為 none 時對所有等級開放
func (d *DiscountCode) AppliesToRank(rank LoyaltyRank) bool {
	return d.EligibleRank == LoyaltyRankNone || d.EligibleRank == rank
}

// CreateDiscountRequest 建立折扣碼請求
type CreateDiscountRequest struct {
	Code         string    `json:"code" binding:"required"`
	PercentOff   int       `json:"percent_off" binding:"required,min=1,max=100"`
	ExpiresAt    time.Time `json:"expires_at" binding:"required"`
	EligibleRank string    `json:"eligible_rank"`
}
