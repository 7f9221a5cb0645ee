package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed:
		return true
	}
	return false
}

// IsTerminal 付款成功或失敗後不再轉換
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s != OrderStatusPending {
		return false // paid / failed 為終態
	}
	return target == OrderStatusPaid || target == OrderStatusFailed
}

// PaymentMethod 付款方式
type PaymentMethod string

const (
	PaymentMethodMoMo       PaymentMethod = "momo"
	PaymentMethodVNPay      PaymentMethod = "vnpay"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMoMo, PaymentMethodVNPay, PaymentMethodCreditCard:
		return true
	}
	return false
}

// Order 訂單模型
// Active 在訂單被判定過期/失敗並歸還庫存後設為 false，
// 之後重複送達的 webhook 一律視為 no-op。
type Order struct {
	ID              int             `json:"id" db:"id"`
	BuyerID         int             `json:"buyer_id" db:"buyer_id"`
	TicketTypeID    int             `json:"ticket_type_id" db:"ticket_type_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountCode    *string         `json:"discount_code,omitempty" db:"discount_code"`
	DiscountPercent *int            `json:"discount_percent,omitempty" db:"discount_percent"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method" db:"payment_method"`
	Status          OrderStatus     `json:"status" db:"status"`
	Active          bool            `json:"active" db:"active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at" db:"expires_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsExpired 付款期限是否已過
func (o *Order) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// CreateOrderRequest 創建訂單請求
type CreateOrderRequest struct {
	BuyerID       int    `json:"buyer_id" binding:"required"`
	TicketTypeID  int    `json:"ticket_type_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	DiscountCode  string `json:"discount_code"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// OrderResponse 訂單響應
type OrderResponse struct {
	ID          int             `json:"order_id"`
	BuyerID     int             `json:"buyer_id"`
	TicketType  int             `json:"ticket_type_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

func (o *Order) ToResponse() *OrderResponse {
	return &OrderResponse{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		TicketType:  o.TicketTypeID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		ExpiresAt:   o.ExpiresAt,
	}
}
