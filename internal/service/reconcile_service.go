package service

import (
	"context"
	"errors"
	"time"

	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/payment"
	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"
	"eventgo-ticketing/pkg/monitoring"

	"go.uber.org/zap"
)

// WebhookOutcome webhook 對帳結論。驗章通過後一律回 200，
// 否則閘道會無限重送同一筆通知。
type WebhookOutcome struct {
	OrderID   int
	Applied   bool
	TooLate   bool
	Duplicate bool
	Message   string
}

type ReconcileService interface {
	// PayOrder 對 PENDING 且未過期的訂單發起收款
	PayOrder(ctx context.Context, orderID int) (*payment.Charge, error)
	// HandleWebhook 驗章、解析、套用閘道結果到訂單狀態機
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutcome, error)
	// CheckStatus webhook 掉包時的輪詢後備，主動向閘道對帳
	CheckStatus(ctx context.Context, orderID int) (*WebhookOutcome, error)
}

type ReconcileServiceImpl struct {
	gateway payment.Gateway
	orders  OrderService
	repo    repository.OrderRepository
	log     *zap.Logger
}

func NewReconcileService(gateway payment.Gateway, orders OrderService, repo repository.OrderRepository) ReconcileService {
	return &ReconcileServiceImpl{
		gateway: gateway,
		orders:  orders,
		repo:    repo,
		log:     logger.WithComponent("reconcile"),
	}
}

func (s *ReconcileServiceImpl) PayOrder(ctx context.Context, orderID int) (*payment.Charge, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperrors.ErrOrderNotPending
	}
	// 逾期但掃描還沒掃到的訂單不能再發起收款，
	// 順手走過期路徑歸還庫存
	if now := time.Now(); order.IsExpired(now) {
		if _, err := s.orders.ExpireIfDue(ctx, orderID, now); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrOrderExpired
	}

	charge, err := s.gateway.CreateCharge(ctx, order)
	if err != nil {
		s.log.Warn("create charge failed", zap.Int("order_id", orderID), zap.Error(err))
		return nil, err
	}

	s.log.Info("charge created",
		zap.Int("order_id", orderID),
		zap.String("order_ref", charge.OrderRef))
	return charge, nil
}

func (s *ReconcileServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutcome, error) {
	if !s.gateway.VerifySignature(payload, signature) {
		monitoring.RecordWebhook("bad_signature")
		return nil, apperrors.ErrInvalidSignature
	}

	result, err := s.gateway.ParseWebhookResult(payload)
	if err != nil {
		monitoring.RecordWebhook("malformed")
		return nil, err
	}

	buyerID, orderID, err := payment.ParseOrderRef(result.OrderRef)
	if err != nil {
		monitoring.RecordWebhook("bad_order_ref")
		return nil, err
	}

	// 編號能解析還不夠，買家也要對得上才算同一筆交易
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		monitoring.RecordWebhook("bad_order_ref")
		return nil, err
	}
	if order.BuyerID != buyerID {
		monitoring.RecordWebhook("buyer_mismatch")
		s.log.Warn("webhook order ref buyer mismatch",
			zap.Int("order_id", orderID),
			zap.Int("ref_buyer_id", buyerID),
			zap.Int("order_buyer_id", order.BuyerID))
		return nil, apperrors.ErrInvalidOrderRef
	}

	return s.apply(ctx, orderID, result.Succeeded, result.Message)
}

func (s *ReconcileServiceImpl) CheckStatus(ctx context.Context, orderID int) (*WebhookOutcome, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return &WebhookOutcome{OrderID: orderID, Duplicate: true, Message: "order already settled"}, nil
	}

	status, err := s.gateway.QueryStatus(ctx, payment.FormatOrderRef(order.BuyerID, order.ID))
	if err != nil {
		return nil, err
	}
	if status.Pending {
		return &WebhookOutcome{OrderID: orderID, Message: "payment still pending"}, nil
	}

	return s.apply(ctx, orderID, status.Succeeded, status.Message)
}

// apply 把閘道結論餵進訂單狀態機並翻譯結果。
// 狀態機負責所有併發防護，這裡只做錯誤分類。
func (s *ReconcileServiceImpl) apply(ctx context.Context, orderID int, succeeded bool, message string) (*WebhookOutcome, error) {
	outcome := &WebhookOutcome{OrderID: orderID, Message: message}

	if !succeeded {
		err := s.orders.MarkFailed(ctx, orderID, message)
		switch {
		case err == nil:
			outcome.Applied = true
			monitoring.RecordWebhook("failed_applied")
		case errors.Is(err, apperrors.ErrOrderAlreadyTerminal):
			outcome.Duplicate = true
			monitoring.RecordWebhook("duplicate")
		default:
			return nil, err
		}
		return outcome, nil
	}

	_, err := s.orders.MarkPaid(ctx, orderID)
	switch {
	case err == nil:
		outcome.Applied = true
		monitoring.RecordWebhook("paid_applied")
	case errors.Is(err, apperrors.ErrOrderAlreadyTerminal):
		// 閘道重送或輪詢撞上已結案訂單，冪等收下
		outcome.Duplicate = true
		monitoring.RecordWebhook("duplicate")
	case errors.Is(err, apperrors.ErrOrderExpired):
		// 成功通知晚於付款期限：訂單已走過期路徑，
		// 這筆款項需要人工退款，記 log 不報錯
		outcome.TooLate = true
		monitoring.RecordWebhook("too_late")
		s.log.Warn("payment succeeded after order expired, manual refund required",
			zap.Int("order_id", orderID))
	default:
		return nil, err
	}
	return outcome, nil
}
