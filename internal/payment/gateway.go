package payment

import (
	"context"

	"eventgo-ticketing/internal/model"
)

// Charge 建立收款後回傳的可付款載體
type Charge struct {
	PayURL   string `json:"pay_url"`
	QRTarget string `json:"qr_target"`
	OrderRef string `json:"order_ref"`
}

// WebhookResult 解析 webhook payload 後的閘道結果
type WebhookResult struct {
	OrderRef  string
	Succeeded bool
	Message   string
}

// StatusResult 主動查詢收款狀態的結果，webhook 不可靠時的輪詢後備
type StatusResult struct {
	Succeeded bool
	Pending   bool
	Message   string
}

// Gateway 支付閘道介面。核心流程把閘道視為不透明協作者，
// 任何 MoMo/VNPAY 等價的實作都必須滿足這組契約。
type Gateway interface {
	// CreateCharge 發起收款，逾時視為該次嘗試的非致命失敗
	CreateCharge(ctx context.Context, order *model.Order) (*Charge, error)
	// VerifySignature 驗章失敗是 hard reject：直接回 400，不碰任何狀態
	VerifySignature(payload []byte, signature string) bool
	ParseWebhookResult(payload []byte) (*WebhookResult, error)
	QueryStatus(ctx context.Context, orderRef string) (*StatusResult, error)
}
